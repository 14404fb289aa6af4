package ipc

import (
	"encoding/json"
	"testing"
)

func TestParseRequest_RoundTrip(t *testing.T) {
	data, err := json.Marshal(&Request{Command: CommandGetStatus})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req, err := ParseRequest(append(data, '\n'))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Command != CommandGetStatus {
		t.Fatalf("expected %q, got %q", CommandGetStatus, req.Command)
	}
}

func TestParseRequest_RejectsGarbage(t *testing.T) {
	if _, err := ParseRequest([]byte("not json\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestResponse_StatusDataRoundTrip(t *testing.T) {
	status := StatusData{
		State:          "idle",
		Fingerprint:    "eDP-1:1920x1080+0+0/1",
		TrackedWindows: 4,
		StoredRecords:  9,
		SettleDelayMS:  500,
		AutoResize:     true,
		UptimeSeconds:  60,
		DaemonRunning:  true,
	}

	resp, err := NewOKResponse(status)
	if err != nil {
		t.Fatalf("build response: %v", err)
	}
	data, err := resp.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Response
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Status != "OK" {
		t.Fatalf("expected OK, got %q", decoded.Status)
	}

	var got StatusData
	if err := json.Unmarshal(decoded.Data, &got); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if got != status {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, status)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("boom")
	if resp.Status != "ERROR" || resp.Error != "boom" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
