package opend

import (
	"bytes"
	"crypto/sha1"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	body := []byte(`{"c2s":{"userID":0}}`)
	var buf bytes.Buffer

	if err := writeFrame(&buf, protoGetGlobalState, 7, body); err != nil {
		t.Fatalf("writeFrame failed: %v", err)
	}

	protoID, got, err := readFrame(&buf)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}

	if protoID != protoGetGlobalState {
		t.Errorf("Expected proto %d, got %d", protoGetGlobalState, protoID)
	}

	if !bytes.Equal(got, body) {
		t.Errorf("Expected body %q, got %q", body, got)
	}
}

func TestFrameHeaderLayout(t *testing.T) {
	body := []byte(`{}`)
	var buf bytes.Buffer

	if err := writeFrame(&buf, protoInitConnect, 1, body); err != nil {
		t.Fatalf("writeFrame failed: %v", err)
	}

	raw := buf.Bytes()
	if len(raw) != headerLen+len(body) {
		t.Fatalf("Expected %d bytes, got %d", headerLen+len(body), len(raw))
	}

	if raw[0] != 'F' || raw[1] != 'T' {
		t.Errorf("Expected magic FT, got %q", raw[:2])
	}

	if raw[6] != fmtTypeJSON {
		t.Errorf("Expected JSON format flag, got %d", raw[6])
	}

	sum := sha1.Sum(body)
	if !bytes.Equal(raw[16:36], sum[:]) {
		t.Error("Expected body SHA-1 in header")
	}
}

func TestReadFrameBadMagic(t *testing.T) {
	raw := make([]byte, headerLen)
	raw[0], raw[1] = 'X', 'Y'

	if _, _, err := readFrame(bytes.NewReader(raw)); err == nil {
		t.Error("Expected error for bad frame magic")
	}
}

func TestSplitCode(t *testing.T) {
	tests := []struct {
		code   string
		market int
		bare   string
	}{
		{"HK.00700", 1, "00700"},
		{"US.AAPL", 11, "AAPL"},
		{"00700", 1, "00700"},
		{"XX.123", 1, "XX.123"},
	}

	for _, tt := range tests {
		market, bare := splitCode(tt.code)
		if market != tt.market || bare != tt.bare {
			t.Errorf("splitCode(%q) = (%d, %q), expected (%d, %q)", tt.code, market, bare, tt.market, tt.bare)
		}
	}
}

func TestJoinCode(t *testing.T) {
	if got := joinCode(1, "00700"); got != "HK.00700" {
		t.Errorf("Expected HK.00700, got %q", got)
	}

	if got := joinCode(11, "AAPL"); got != "US.AAPL" {
		t.Errorf("Expected US.AAPL, got %q", got)
	}

	// Unknown market numbers pass the bare code through.
	if got := joinCode(99, "123"); got != "123" {
		t.Errorf("Expected bare code, got %q", got)
	}
}

func TestOrderStatusName(t *testing.T) {
	if got := orderStatusName(11); got != "FILLED" {
		t.Errorf("Expected FILLED, got %q", got)
	}

	if got := orderStatusName(15); got != "CANCELLED" {
		t.Errorf("Expected CANCELLED, got %q", got)
	}

	// Unmapped statuses fall back to SUBMITTED.
	if got := orderStatusName(999); got != "SUBMITTED" {
		t.Errorf("Expected SUBMITTED fallback, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Ret: -1, Msg: "unlock failed"}
	if err.Error() != "opend: ret=-1 msg=unlock failed" {
		t.Errorf("Unexpected error text: %s", err.Error())
	}
}
