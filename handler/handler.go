package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"rag-chatbot/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

const (
	msgInvalidJSON = "Invalid JSON body"
	msgNotFound    = "Not found"
)

var newID = func() string { return uuid.NewString() }

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type UploadUseCase interface {
	Upload(ctx context.Context, in usecase.UploadInput) (usecase.UploadOutput, error)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type uploadRequest struct {
	Filename    string `json:"filename"`
	FileContent string `json:"file_content"`
	MimeType    string `json:"mime_type"`
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	S3Key      string `json:"s3_key"`
	Timestamp  string `json:"timestamp"`
}

type errorResponse struct {
	Error     string `json:"error"`
	SessionID string `json:"session_id,omitempty"`
}

type preflightResponse struct {
	Message string `json:"message"`
}

// Handler routes API Gateway proxy requests to the chat and upload flows and
// renders every result as a JSON envelope with CORS headers.
type Handler struct {
	chat   ChatUseCase
	upload UploadUseCase
	logger *slog.Logger
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHandler(chat ChatUseCase, upload UploadUseCase, opts ...Option) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	if upload == nil {
		return nil, errors.New("handler: upload use case must not be nil")
	}
	h := &Handler{chat: chat, upload: upload, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Invoke is the Lambda entry point. An API Gateway event is routed normally;
// any other payload is a direct invocation and is treated as a chat request
// body.
func (h *Handler) Invoke(ctx context.Context, raw json.RawMessage) (events.APIGatewayProxyResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		_, hasMethod := fields["httpMethod"]
		_, hasBody := fields["body"]
		if hasMethod || hasBody {
			var req events.APIGatewayProxyRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				h.logger.WarnContext(ctx, "malformed gateway event", "err", err)
				resp := jsonResponse(http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
				resp.Headers[correlationHeader] = newID()
				return resp, nil
			}
			return h.Handle(ctx, req)
		}
	}
	return h.Handle(ctx, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/chat",
		Body:       string(raw),
	})
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = newID()
	}
	logger := h.logger.With("correlation_id", correlationID)

	var resp events.APIGatewayProxyResponse
	switch route(req) {
	case routePreflight:
		resp = jsonResponse(http.StatusOK, preflightResponse{Message: "CORS preflight"})
	case routeChat:
		resp = h.handleChat(ctx, logger, req)
	case routeUpload:
		resp = h.handleUpload(ctx, logger, req)
	default:
		logger.WarnContext(ctx, "no route", "method", req.HTTPMethod, "path", req.Path)
		resp = jsonResponse(http.StatusNotFound, errorResponse{Error: msgNotFound})
	}
	resp.Headers[correlationHeader] = correlationID
	return resp, nil
}

func (h *Handler) handleChat(ctx context.Context, logger *slog.Logger, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var in chatRequest
	if err := decodeBody(req, &in); err != nil {
		logger.WarnContext(ctx, "invalid chat body", "err", err)
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
	}
	out, err := h.chat.Chat(ctx, usecase.ChatInput{
		Message:   in.Message,
		SessionID: in.SessionID,
		UserID:    in.UserID,
	})
	if err != nil {
		status, body := h.mapError(ctx, logger, err)
		body.SessionID = out.SessionID
		return jsonResponse(status, body)
	}
	return jsonResponse(http.StatusOK, chatResponse{
		Response:  out.Response,
		SessionID: out.SessionID,
		Timestamp: formatTime(out.Timestamp),
	})
}

func (h *Handler) handleUpload(ctx context.Context, logger *slog.Logger, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var in uploadRequest
	if err := decodeBody(req, &in); err != nil {
		logger.WarnContext(ctx, "invalid upload body", "err", err)
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
	}
	out, err := h.upload.Upload(ctx, usecase.UploadInput{
		Filename:    in.Filename,
		FileContent: in.FileContent,
		MimeType:    in.MimeType,
		SessionID:   in.SessionID,
		UserID:      in.UserID,
	})
	if err != nil {
		status, body := h.mapError(ctx, logger, err)
		return jsonResponse(status, body)
	}
	return jsonResponse(http.StatusOK, uploadResponse{
		Success:    true,
		DocumentID: out.DocumentID,
		Filename:   out.Filename,
		Size:       out.Size,
		S3Key:      out.S3Key,
		Timestamp:  formatTime(out.Timestamp),
	})
}

// mapError turns a use case failure into a status and body. Only invalid
// input reaches the caller verbatim; everything else is a generic 500.
func (h *Handler) mapError(ctx context.Context, logger *slog.Logger, err error) (int, errorResponse) {
	var ue *usecase.Error
	if errors.As(err, &ue) && ue.Code == usecase.ErrorInvalidInput {
		logger.InfoContext(ctx, "rejected request", "reason", ue.Reason)
		return http.StatusBadRequest, errorResponse{Error: ue.Message}
	}
	logger.ErrorContext(ctx, "request failed", "err", err)
	return http.StatusInternalServerError, errorResponse{Error: usecase.MsgInternalServerError}
}

type routeKind int

const (
	routeNone routeKind = iota
	routePreflight
	routeChat
	routeUpload
)

// route matches the API Gateway resource when it is a literal one. Otherwise
// the path may carry at most a single stage segment ahead of the endpoint name.
func route(req events.APIGatewayProxyRequest) routeKind {
	if req.HTTPMethod == http.MethodOptions {
		return routePreflight
	}
	if req.HTTPMethod != http.MethodPost {
		return routeNone
	}
	if req.Resource != "" && !strings.Contains(req.Resource, "{") {
		return routeByName(strings.TrimRight(req.Resource, "/"))
	}
	segments := strings.Split(strings.Trim(req.Path, "/"), "/")
	if len(segments) > 2 {
		return routeNone
	}
	return routeByName("/" + segments[len(segments)-1])
}

func routeByName(path string) routeKind {
	switch path {
	case "/chat":
		return routeChat
	case "/upload":
		return routeUpload
	}
	return routeNone
}

func decodeBody(req events.APIGatewayProxyRequest, v any) error {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return err
		}
		body = decoded
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"` + usecase.MsgInternalServerError + `"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                 "application/json",
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Headers": "Content-Type",
			"Access-Control-Allow-Methods": "OPTIONS,POST,GET",
		},
		Body: string(b),
	}
}

// headerValue looks up name case-insensitively.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
