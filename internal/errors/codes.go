// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input validation errors
	CodeInvalidThreatLevel Code = "INVALID_THREAT_LEVEL"
	CodeInvalidCombatSetup Code = "INVALID_COMBAT_SETUP"
	CodeInvalidDiceFormula Code = "INVALID_DICE_FORMULA"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"

	// Not-found errors
	CodeCampaignNotFound    Code = "CAMPAIGN_NOT_FOUND"
	CodeNoActiveCombat      Code = "NO_ACTIVE_COMBAT"
	CodeParticipantNotFound Code = "PARTICIPANT_NOT_FOUND"
	CodeNotFound            Code = "NOT_FOUND"

	// State-conflict errors
	CodeParticipantInactive Code = "PARTICIPANT_INACTIVE"
	CodeDuplicateCombat     Code = "DUPLICATE_COMBAT"
	CodeAlreadyExists       Code = "ALREADY_EXISTS"
)

// Category groups codes by the kind of failure they report.
type Category int

const (
	CategoryUnknown Category = iota
	// CategoryValidation marks malformed request data supplied by the caller.
	CategoryValidation
	// CategoryNotFound marks references to entities absent from current state.
	CategoryNotFound
	// CategoryConflict marks structurally valid operations that violate a state invariant.
	CategoryConflict
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryNotFound:
		return "not_found"
	case CategoryConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Category maps a code to its failure category.
func (c Code) Category() Category {
	switch c {
	case CodeInvalidThreatLevel,
		CodeInvalidCombatSetup,
		CodeInvalidDiceFormula,
		CodeInvalidArgument:
		return CategoryValidation

	case CodeCampaignNotFound,
		CodeNoActiveCombat,
		CodeParticipantNotFound,
		CodeNotFound:
		return CategoryNotFound

	case CodeParticipantInactive,
		CodeDuplicateCombat,
		CodeAlreadyExists:
		return CategoryConflict

	default:
		return CategoryUnknown
	}
}
