package models

// Log operation names used in structured log attributes.
const (
	OpCreateField       = "create field"
	OpUpdateField       = "update field"
	OpDeleteField       = "delete field"
	OpListFields        = "list fields"
	OpCreateType        = "create user type"
	OpUpdateType        = "update user type"
	OpSetTypeActive     = "set user type active"
	OpDeleteType        = "delete user type"
	OpGetTypeImpact     = "get deletion impact"
	OpListTypes         = "list user types"
	OpGetTypeFields     = "get type fields"
	OpSubmitRequest     = "submit request"
	OpTransitionRequest = "transition request"
	OpListRequests      = "list requests"
	OpGetRequest        = "get request"
	OpNotify            = "dispatch notification"
)
