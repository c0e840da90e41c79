// Package domain models the event-traffic scenario exchanged with the
// simulation backend.
//
// # Conversation
//
// The user describes an event in free text. Each turn is appended to a
// transcript and the whole history (minus the synthetic welcome turn) is sent
// to the extraction service, which answers with a reply and its complete
// current belief about the event:
//
//	{"reply": "...", "extracted_params": {...}, "ready_to_simulate": true, "missing_info": []}
//
// The returned parameters replace the previous snapshot wholesale; fields are
// never merged locally.
//
// # Readiness gate
//
// The service reports its own readiness flag, but a simulation is only
// permitted when both the event name and the date are present. See
// [ExtractedParameters.ReadyToSimulate].
//
// # Overlay datasets
//
// A simulation answers with an hour-indexed colour map:
//
//	hours:        ["16:00", "17:00", ...]
//	by_street:    {"18:00": {"Via Sparano": "#ff0000"}}
//	by_quartiere: {"18:00": {"BARI": "#ffa500"}}
//
// Colours are drawn from a fixed palette (see [Color]). The baseline endpoint
// returns the same shape for the no-event condition of a date.
//
// # Map geometry
//
// Road features come from a GeoJSON collection. The street name lives in the
// "denominazi" property; the district in "quartiere_" or, on some upstream
// extracts, "quartier_1".
package domain
