package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/service"
)

func post(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header = authHeader("tok")
	h.ServeHTTP(w, req)
	return w
}

func TestNotificationHandlers_List(t *testing.T) {
	events := &mockEventLog{entries: []models.LogEntry{{ID: 3, DeviceID: "BAT002", EventType: "alarm"}}}
	r := newTestRouter(signedIn(&service.Service{EventLog: events}))

	w := get(t, r, "/api/notifications")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	events.err = errors.New("boom")
	w = get(t, r, "/api/notifications")
	if w.Code != http.StatusInternalServerError || errorBody(t, w) != errInternal {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestNotificationHandlers_MarkRead(t *testing.T) {
	cases := []struct {
		name      string
		path      string
		svcErr    error
		wantCode  int
		wantCalls int
	}{
		{name: "ok", path: "/api/notifications/alarm/7/read", wantCode: http.StatusNoContent, wantCalls: 1},
		{name: "unknown id is still 204", path: "/api/notifications/fault/99999/read", wantCode: http.StatusNoContent, wantCalls: 1},
		{name: "bad type", path: "/api/notifications/warning/7/read", svcErr: service.ErrInvalidEventType, wantCode: http.StatusBadRequest, wantCalls: 1},
		{name: "bad id", path: "/api/notifications/alarm/x/read", wantCode: http.StatusBadRequest},
		{name: "store failure", path: "/api/notifications/alarm/7/read", svcErr: errors.New("locked"), wantCode: http.StatusInternalServerError, wantCalls: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events := &mockEventLog{err: tc.svcErr}
			r := newTestRouter(signedIn(&service.Service{EventLog: events}))

			w := post(t, r, tc.path)
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			if events.markCalls != tc.wantCalls {
				t.Fatalf("MarkRead calls: got %d, want %d", events.markCalls, tc.wantCalls)
			}
			if tc.wantCode == http.StatusNoContent && w.Body.Len() != 0 {
				t.Fatalf("204 must have no body, got %q", w.Body.String())
			}
		})
	}

	events := &mockEventLog{}
	r := newTestRouter(signedIn(&service.Service{EventLog: events}))
	_ = post(t, r, "/api/notifications/fault/12/read")
	if events.lastType != "fault" || events.lastEvent != 12 {
		t.Fatalf("unexpected args: %q %d", events.lastType, events.lastEvent)
	}
}
