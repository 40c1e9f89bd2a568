package lifecycle

import (
	"encoding/json"
)

// Status is a handler's reported outcome for a single invocation.
type Status string

const (
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
	StatusInProgress Status = "IN_PROGRESS"
)

// Terminal reports whether the status ends the logical operation.
// IN_PROGRESS implies a continuation.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Valid reports whether s is one of the three wire statuses.
func (s Status) Valid() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusInProgress
}

// CallbackContext is opaque caller-defined state threaded verbatim between
// continuation steps. It must round-trip through JSON.
type CallbackContext map[string]any

// Clone returns a shallow copy so a later step never mutates an emitted event.
func (c CallbackContext) Clone() CallbackContext {
	if c == nil {
		return nil
	}
	out := make(CallbackContext, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// ProgressEvent is the single result type every handler returns. It is created
// by one handler invocation, consumed once by the dispatcher, and never
// mutated afterwards.
type ProgressEvent struct {
	Status               Status          `json:"status"`
	ResourceModel        any             `json:"resourceModel,omitempty"`
	CallbackContext      CallbackContext `json:"callbackContext,omitempty"`
	CallbackDelayMinutes int             `json:"callbackDelayMinutes,omitempty"`
	ErrorCode            string          `json:"errorCode,omitempty"`
	Message              string          `json:"message,omitempty"`
}

// Success builds a terminal SUCCESS event carrying the resource model.
func Success(model any) ProgressEvent {
	return ProgressEvent{Status: StatusSuccess, ResourceModel: model}
}

// InProgress builds a non-terminal event requesting a continuation after
// delayMinutes. A zero delay means continue immediately.
func InProgress(model any, ctx CallbackContext, delayMinutes int) ProgressEvent {
	if delayMinutes < 0 {
		delayMinutes = 0
	}
	return ProgressEvent{
		Status:               StatusInProgress,
		ResourceModel:        model,
		CallbackContext:      ctx,
		CallbackDelayMinutes: delayMinutes,
	}
}

// Failed builds a terminal FAILED event with an explicit taxonomy code.
func Failed(code, message string) ProgressEvent {
	return ProgressEvent{Status: StatusFailed, ErrorCode: code, Message: message}
}

// FailedFrom normalizes any error into a well formed FAILED event. Taxonomy
// members keep their code; everything else becomes InternalFailure.
func FailedFrom(err error) ProgressEvent {
	norm := Normalize(err)
	if norm == nil {
		return Failed(CodeInternalFailure, "InternalFailure: unknown error")
	}
	return Failed(norm.TextCode, norm.Message)
}

// MarshalJSON emits exactly one of the three wire shapes, dropping fields that
// do not belong to the event's status.
func (e ProgressEvent) MarshalJSON() ([]byte, error) {
	switch e.Status {
	case StatusFailed:
		return json.Marshal(struct {
			Status        Status `json:"status"`
			ErrorCode     string `json:"errorCode"`
			Message       string `json:"message"`
			ResourceModel any    `json:"resourceModel,omitempty"`
		}{e.Status, e.ErrorCode, e.Message, e.ResourceModel})
	case StatusInProgress:
		return json.Marshal(struct {
			Status               Status          `json:"status"`
			ResourceModel        any             `json:"resourceModel,omitempty"`
			CallbackContext      CallbackContext `json:"callbackContext,omitempty"`
			CallbackDelayMinutes int             `json:"callbackDelayMinutes"`
		}{e.Status, e.ResourceModel, e.CallbackContext, e.CallbackDelayMinutes})
	default:
		return json.Marshal(struct {
			Status        Status `json:"status"`
			ResourceModel any    `json:"resourceModel,omitempty"`
		}{e.Status, e.ResourceModel})
	}
}
