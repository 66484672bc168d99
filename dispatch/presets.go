package dispatch

// Preset is the fixed retrieval parameter record of one dispatch routine.
// Tuning a routine means editing its preset here; nothing else carries
// retrieval literals.
type Preset struct {
	// Limit caps the number of retrieved rows. Zero means no cap, used by
	// the generative modes where retrieval only grounds the server-side
	// generation.
	Limit int
	// Alpha weights keyword against vector similarity in hybrid modes.
	Alpha float64
	// Certainty is the similarity floor in nearText modes.
	Certainty float64
	// RestrictQuery limits the hybrid keyword side to the collection's
	// schema fields instead of every indexed property.
	RestrictQuery bool
}

var presets = map[Selector]Preset{
	{Response: ResponseSemantic, Retrieval: RetrievalHybrid}:     {Limit: 10, Alpha: 0.5, RestrictQuery: true},
	{Response: ResponseSemantic, Retrieval: RetrievalNearText}:   {Limit: 10, Certainty: 0.85},
	{Response: ResponseGenerative, Retrieval: RetrievalHybrid}:   {Alpha: 0.3, RestrictQuery: true},
	{Response: ResponseGenerative, Retrieval: RetrievalNearText}: {Certainty: 0.72},
}

// channelPreset drives the transport exchange routine: hybrid retrieval with
// every field queryable.
var channelPreset = Preset{Limit: 10, Alpha: 0.5}

// PresetFor returns the parameter record for the selector and whether the
// selector names a routine at all. The returned record is a copy; callers
// cannot mutate the table.
func PresetFor(sel Selector) (Preset, bool) {
	p, ok := presets[sel]
	return p, ok
}

// ChannelPreset returns the transport exchange parameter record.
func ChannelPreset() Preset {
	return channelPreset
}
