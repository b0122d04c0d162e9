package customer

import "fieldreport/internal/domain/customer"

type clientBody struct {
	LocalID  int64  `json:"local_id,omitempty"`
	Name     string `json:"name" minLength:"1"`
	Document string `json:"document" minLength:"1"`
	Contact  string `json:"contact,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type createInput struct {
	Body clientBody
}

type updateInput struct {
	ID   int64 `path:"id"`
	Body clientBody
}

type createOutput struct {
	Status int
	Body   createResponse
}

type createResponse struct {
	ID int64 `json:"id"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Clients []customer.Client `json:"clients"`
}
