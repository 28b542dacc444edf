package constants

// Centralized constants for env keys, routes and shared defaults.
const (
	// Environment variable keys
	EnvConfigPath = "TRACKER_CONFIG"
	EnvDBPath     = "TRACKER_DB"

	// HTTP headers and content types
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"

	// Tracker defaults
	DefaultMaxHistoryRounds = 10
	DefaultDebounceMillis   = 300
	DefaultSessionIdleMin   = 30
)

// Routes used by the backend router
const (
	RouteAPIPrefix       = "/api"
	RouteHealth          = "/healthz"
	RouteVersion         = "/version"
	RouteEncounters      = "/encounters"
	RouteEncounterByID   = "/encounters/:encounterID"
	RouteCombatStart     = "/encounters/:encounterID/combat/start"
	RouteCombatEnd       = "/encounters/:encounterID/combat/end"
	RouteRound           = "/encounters/:encounterID/round"
	RouteRoundNext       = "/encounters/:encounterID/round/next"
	RouteRoundPrevious   = "/encounters/:encounterID/round/previous"
	RouteEffects         = "/encounters/:encounterID/effects"
	RouteEffectByID      = "/encounters/:encounterID/effects/:effectID"
	RouteTriggers        = "/encounters/:encounterID/triggers"
	RouteTriggerActivate = "/encounters/:encounterID/triggers/:triggerID/activate"
	RouteHistory         = "/encounters/:encounterID/history"
	RouteExport          = "/encounters/:encounterID/export"
	RouteLive            = "/encounters/:encounterID/live"
)

// JSON keys used in API responses
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
)

// Error messages returned by the API
const (
	ErrInvalidRequest        = "Invalid request"
	ErrInvalidEncounterID    = "Invalid encounter id"
	ErrEncounterNotFound     = "Encounter not found"
	ErrEffectNotFound        = "Effect not found"
	ErrTriggerNotFound       = "Trigger not found"
	ErrCombatNotActive       = "Combat is not active for this encounter"
	ErrCombatAlreadyActive   = "Combat is already active for this encounter"
	ErrFailedCreateEncounter = "Failed to create encounter"
	ErrFailedFetchEncounters = "Failed to fetch encounters"
	ErrFailedUpdateEncounter = "Failed to update encounter"
	ErrFailedExportEncounter = "Failed to export encounter"
	ErrEncounterNameExceeds  = "Encounter name exceeds the 64 character limit"
	ErrDescriptionExceeds    = "Description exceeds the 256 character limit"
)

// Log field names
const (
	LogFieldAddr        = "addr"
	LogFieldEncounterID = "encounter_id"
	LogFieldRound       = "round"
	LogFieldTriggerID   = "trigger_id"
	LogFieldEffectIDs   = "effect_ids"
)
