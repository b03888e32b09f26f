package domain

import (
	"errors"
	"testing"
)

func TestParseRecordStatus(t *testing.T) {
	for _, raw := range []string{"expected", "processed"} {
		status, err := ParseRecordStatus(raw)
		if err != nil {
			t.Errorf("ParseRecordStatus(%q) returned error: %v", raw, err)
		}
		if string(status) != raw {
			t.Errorf("ParseRecordStatus(%q) = %q", raw, status)
		}
	}

	for _, raw := range []string{"", "EXPECTED", "done", "pending"} {
		if _, err := ParseRecordStatus(raw); !errors.Is(err, ErrInvalidRecordStatus) {
			t.Errorf("ParseRecordStatus(%q) error = %v, want ErrInvalidRecordStatus", raw, err)
		}
	}
}

func TestParseRecordType(t *testing.T) {
	for _, raw := range []string{"order", "transaction", "file", "shipment", "payment"} {
		rt, err := ParseRecordType(raw)
		if err != nil {
			t.Errorf("ParseRecordType(%q) returned error: %v", raw, err)
		}
		if string(rt) != raw {
			t.Errorf("ParseRecordType(%q) = %q", raw, rt)
		}
	}

	for _, raw := range []string{"", "Order", "invoice"} {
		if _, err := ParseRecordType(raw); !errors.Is(err, ErrInvalidRecordType) {
			t.Errorf("ParseRecordType(%q) error = %v, want ErrInvalidRecordType", raw, err)
		}
	}
}
