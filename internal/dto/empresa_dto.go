package dto

type GuardarEmpresaRequest struct {
	Nombre    string `json:"nombre"    validate:"required,min=2,max=120"`
	NIT       string `json:"nit"       validate:"required,min=5,max=30"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Email     string `json:"email"     validate:"omitempty,email"`
}

type EmpresaResponse struct {
	Nombre    string `json:"nombre"`
	NIT       string `json:"nit"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Email     string `json:"email"`
}
