package app

import "github.com/Rrens/routine-advisor/internal/domain"

// View renders application state. Every call receives a snapshot the view
// may keep; implementations must not call back into App.
type View interface {
	// RenderProducts shows the visible products. An empty list is the
	// "no products found" state.
	RenderProducts(products []domain.Product, selected map[domain.ProductID]bool)

	// RenderSelection shows the selected products in catalog order
	RenderSelection(selected []domain.Product)

	// MarkProduct updates one product card's selected state
	MarkProduct(id domain.ProductID, selected bool)

	// RenderChat shows the whole conversation
	RenderChat(messages []domain.Message)

	// ShowNotice shows a transient message that is never persisted
	ShowNotice(text string)

	// ShowTyping toggles the assistant typing indicator
	ShowTyping(on bool)
}

// discardView drops every render call
type discardView struct{}

func (discardView) RenderProducts([]domain.Product, map[domain.ProductID]bool) {}
func (discardView) RenderSelection([]domain.Product) {}
func (discardView) MarkProduct(domain.ProductID, bool) {}
func (discardView) RenderChat([]domain.Message) {}
func (discardView) ShowNotice(string) {}
func (discardView) ShowTyping(bool) {}
