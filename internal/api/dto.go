package api

import (
	"github.com/starford/cardex/internal/flow"
	"github.com/starford/cardex/internal/index"
	"github.com/starford/cardex/internal/models"
)

// CardListResponse wraps the full record collection.
type CardListResponse struct {
	Cards []models.CardRecord `json:"cards" validate:"required"`
	Total int                 `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps contact search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// FlowResponse is the body returned by every flow endpoint: the session id
// plus a snapshot of where the flow is now.
type FlowResponse struct {
	SessionID string     `json:"session_id" validate:"required"`
	State     flow.State `json:"state" validate:"required"`
}

// UpdateDraftRequest is the request body for editing the draft under review.
type UpdateDraftRequest struct {
	Name        string `json:"name" example:"Ana Silva"`
	Company     string `json:"company" example:"Acme Corp"`
	Title       string `json:"title" example:"CTO"`
	Phone       string `json:"phone" example:"+55 11 99999-0000"`
	Email       string `json:"email" example:"ana@acme.test"`
	Website     string `json:"website" example:"acme.test"`
	Address     string `json:"address" example:"Av. Paulista 1000"`
	PersonPhoto string `json:"person_photo,omitempty"`
}
