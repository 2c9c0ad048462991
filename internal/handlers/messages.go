package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/services"
	"arogya-app-server/internal/utils"
)

// MessageHandler serves the assistant chat and the teleconsult chat.
type MessageHandler struct {
	Assistant   *services.Assistant
	Teleconsult *services.Teleconsult
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(assistant *services.Assistant, teleconsult *services.Teleconsult) *MessageHandler {
	return &MessageHandler{Assistant: assistant, Teleconsult: teleconsult}
}

// SendMessageRequest represents the request body for sending a chat message.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type chunkEvent struct {
	Text string `json:"text"`
}

// GetAssistantMessages returns the assistant conversation.
func (h *MessageHandler) GetAssistantMessages(c *gin.Context) {
	utils.Success(c, "Messages fetched successfully", h.Assistant.Messages())
}

// ChatWithAssistant streams the assistant's reply as server-sent events:
// "chunk" events while text arrives, then one "done" event with the messages
// the turn added. Closing the connection cancels the reply.
func (h *MessageHandler) ChatWithAssistant(c *gin.Context) {
	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	chunks := make(chan string, 16)
	turn, err := h.Assistant.Begin(ctx, req.Text, func(chunk string) {
		select {
		case chunks <- chunk:
		case <-ctx.Done():
		}
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case chunk := <-chunks:
			c.SSEvent("chunk", chunkEvent{Text: chunk})
			return true
		case <-turn.Done():
			for {
				select {
				case chunk := <-chunks:
					c.SSEvent("chunk", chunkEvent{Text: chunk})
				default:
					c.SSEvent("done", turn.Wait())
					return false
				}
			}
		case <-ctx.Done():
			turn.Cancel()
			return false
		}
	})
}

// CancelAssistant stops the reply being streamed, if any.
func (h *MessageHandler) CancelAssistant(c *gin.Context) {
	utils.Success(c, "Assistant reply cancelled", gin.H{"cancelled": h.Assistant.CancelActive()})
}

// StartTeleconsult opens the video consult.
func (h *MessageHandler) StartTeleconsult(c *gin.Context) {
	utils.Created(c, "Teleconsult started", h.Teleconsult.Start())
}

// GetTeleconsult returns the consult with its elapsed duration.
func (h *MessageHandler) GetTeleconsult(c *gin.Context) {
	utils.Success(c, "Teleconsult fetched successfully", h.Teleconsult.Current())
}

// SendTeleconsultMessage posts a message to the doctor.
func (h *MessageHandler) SendTeleconsultMessage(c *gin.Context) {
	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	consult, err := h.Teleconsult.Send(req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Message sent", consult)
}

// EndTeleconsult hangs up.
func (h *MessageHandler) EndTeleconsult(c *gin.Context) {
	consult, err := h.Teleconsult.End()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Teleconsult ended", consult)
}
