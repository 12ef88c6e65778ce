package dto

// CreateSubAdminRequest provisions a new sub-admin account. Only full
// admins may call the endpoint that binds this request.
type CreateSubAdminRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,min=2,max=100"`
	LastName  string `json:"lastName" binding:"required,min=2,max=100"`
}
