package domain

// Stage is one step of the order-creation workflow. Transitions are strictly
// sequential; the first failing validation stage moves the run to StageFailed
// and no later stage executes. Nothing ever revisits an earlier stage.
type Stage string

const (
	StageValidatingCustomer   Stage = "VALIDATING_CUSTOMER"
	StageValidatingProducts   Stage = "VALIDATING_PRODUCTS"
	StageValidatingStock      Stage = "VALIDATING_STOCK"
	StagePersisting           Stage = "PERSISTING"
	StageReconcilingInventory Stage = "RECONCILING_INVENTORY"
	StageCompleted            Stage = "COMPLETED"
	StageFailed               Stage = "FAILED"
)
