package dto

type FallidosQuery struct {
	Limite int64 `form:"limite" validate:"omitempty,min=1,max=1000"`
}

type ReencolarQuery struct {
	Causa string `form:"causa" validate:"omitempty,oneof=relay destinatario payload sin_handler interna"`
}

type ReencolarResponse struct {
	Reencolados int `json:"reencolados"`
}
