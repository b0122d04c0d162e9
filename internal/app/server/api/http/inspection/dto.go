package inspection

import "fieldreport/internal/domain/inspection"

type createInput struct {
	Body inspection.Inspection
}

type updateInput struct {
	ID   int64 `path:"id"`
	Body inspection.Inspection
}

type findInput struct {
	ID int64 `path:"id"`
}

type findOutput struct {
	Body inspection.Inspection
}

type createTileInput struct {
	ID   int64 `path:"id"`
	Body inspection.Tile
}

type createNonConformityInput struct {
	ID   int64 `path:"id"`
	Body inspection.NonConformity
}

type idOutput struct {
	Status int
	Body   idResponse
}

type idResponse struct {
	ID int64 `json:"id"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Inspections []inspection.Inspection `json:"inspections"`
}
