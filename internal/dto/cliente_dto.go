package dto

type CrearClienteRequest struct {
	TipoDocumento string  `json:"tipo_documento" validate:"required,oneof=CC NIT CE PAS"`
	Documento     string  `json:"documento"      validate:"required,min=3,max=20"`
	Nombre        string  `json:"nombre"         validate:"required,min=2,max=120"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Direccion     *string `json:"direccion"`
}

type ActualizarClienteRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=120"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion"`
}

type ClienteFilter struct {
	Busqueda string `form:"busqueda"` // nombre o documento
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ClienteResponse struct {
	ID            string  `json:"id"`
	TipoDocumento string  `json:"tipo_documento"`
	Documento     string  `json:"documento"`
	Nombre        string  `json:"nombre"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email"`
	Direccion     *string `json:"direccion"`
	Activo        bool    `json:"activo"`
}

type ClienteListResponse struct {
	Exito      bool              `json:"exito"`
	Clientes   []ClienteResponse `json:"clientes"`
	Pagination Pagination        `json:"pagination"`
}
