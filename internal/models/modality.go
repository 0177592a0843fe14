package models

import (
	"strings"

	"github.com/Jeremy009/BMC/internal/registererror"
)

// Modality is the payment method of a transaction.
type Modality string

const (
	ModalityUnset Modality = ""
	ModalityCash  Modality = "cash"
	ModalityCard  Modality = "card"
	// ModalityMultiple only appears on merged transactions.
	ModalityMultiple Modality = "multiple"
)

// IsSettlement reports whether a transaction may be validated with this modality.
func (m Modality) IsSettlement() bool {
	return m == ModalityCash || m == ModalityCard
}

// Label is the French wording used in display strings.
func (m Modality) Label() string {
	switch m {
	case ModalityCash:
		return "cash"
	case ModalityCard:
		return "carte"
	case ModalityMultiple:
		return "multiple"
	default:
		return "-"
	}
}

// ParseModality accepts "cash" or "card" (and the French "carte"), case-insensitively.
func ParseModality(s string) (Modality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return ModalityCash, nil
	case "card", "carte":
		return ModalityCard, nil
	default:
		return ModalityUnset, &registererror.InvalidModalityError{Modality: s, Reason: "must be cash or card"}
	}
}
