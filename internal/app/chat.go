package app

import (
	"context"
	"errors"
	"strings"

	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/relayclient"
	"github.com/elliotchance/pie/v2"
)

const (
	// sendWindow is how many trailing messages accompany each exchange
	sendWindow = 20

	noReplyText         = "No response."
	emptySelectionText  = "Please select at least one product to generate a routine."
	routinePromptHeader = "Please create a step-by-step personalized skincare/haircare routine using ONLY the selected products below. " +
		"Provide simple instructions, order of use, times of day (AM/PM), and any warnings or ingredient interactions. " +
		"Include short, verifiable citations/links when possible and label them 'SOURCES:'.\n\nSelected products:\n"
)

// RoutinePrompt builds the user message requesting a routine for products
func RoutinePrompt(products []domain.Product) string {
	lines := pie.Map(products, func(p domain.Product) string {
		return p.Summary()
	})
	return routinePromptHeader + strings.Join(lines, "\n")
}

// SendUserMessage appends text as a user message and starts an exchange.
// Whitespace-only text is ignored and reported as not sent.
func (a *App) SendUserMessage(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	a.appendMessage(ctx, domain.Message{
		Role:    domain.RoleUser,
		Content: text,
		Time:    a.now(),
	})
	a.startExchange(ctx)
	return true
}

// GenerateRoutine asks for a routine covering the selected products. With
// nothing selected it only shows a notice and reports false.
func (a *App) GenerateRoutine(ctx context.Context) bool {
	selected := a.Selected()
	if len(selected) == 0 {
		a.view.ShowNotice(emptySelectionText)
		return false
	}

	a.appendMessage(ctx, domain.Message{
		Role:    domain.RoleUser,
		Content: RoutinePrompt(selected),
		Time:    a.now(),
	})
	a.startExchange(ctx)
	return true
}

// Wait blocks until every queued exchange has finished
func (a *App) Wait() {
	a.inflight.Wait()
}

func (a *App) appendMessage(ctx context.Context, m domain.Message) {
	a.mu.Lock()
	a.messages = append(a.messages, m)
	a.persistMessages(ctx)
	a.mu.Unlock()

	a.renderChat()
}

// startExchange queues an exchange behind the previous one. Exchanges run
// one at a time in the order they were started.
func (a *App) startExchange(ctx context.Context) {
	a.mu.Lock()
	prev := a.lastExchange
	done := make(chan struct{})
	a.lastExchange = done
	a.mu.Unlock()

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		defer close(done)

		<-prev
		a.exchange(ctx)
	}()
}

// exchange sends the conversation tail and the selected products, then
// appends the reply or shows a notice
func (a *App) exchange(ctx context.Context) {
	a.mu.Lock()
	tail := a.messages[max(len(a.messages)-sendWindow, 0):]
	req := relayclient.Request{
		Messages: pie.Map(tail, domain.Message.ToChat),
		Products: a.catalog.Pick(a.selected),
		Now:      a.now(),
	}
	a.mu.Unlock()

	a.view.ShowTyping(true)
	defer a.view.ShowTyping(false)

	if a.relay == nil {
		a.view.ShowNotice("Error: " + relayclient.ErrEndpointNotConfigured.Error())
		return
	}

	reply, err := a.relay.Exchange(ctx, req)
	if err != nil {
		a.logger.Debug().Err(err).Msg("relay exchange failed")
		a.view.ShowNotice(noticeFor(err))
		return
	}

	text := reply.Text
	if !reply.Present || text == "" {
		text = noReplyText
	}

	a.appendMessage(ctx, domain.Message{
		Role:      domain.RoleAssistant,
		Content:   text,
		Time:      a.now(),
		Citations: reply.Citations,
	})
}

func noticeFor(err error) string {
	var apiErr *relayclient.APIError
	if errors.As(err, &apiErr) {
		return "API Error: " + apiErr.Message
	}
	return "Error: " + err.Error()
}
