// Package scroll keeps the raw and rendered views at the same place.
//
// After each render cycle the editor records, per block, which source
// lines produced which rendered rows. Converting a position then takes
// one of three routes: interpolate inside the block containing it,
// interpolate in the gap between the two nearest blocks, or fall back to
// document-proportional mapping when no block data exists.
package scroll

import "time"

// Origin tags where a scroll event came from, to stop the two views from
// endlessly re-syncing each other.
type Origin int

const (
	OriginNone Origin = iota
	OriginRaw
	OriginRendered
	OriginExternal
)

// BlockKind labels a mapping for debugging.
type BlockKind int

const (
	BlockOther BlockKind = iota
	BlockHeading
	BlockParagraph
	BlockCode
	BlockList
	BlockQuote
	BlockTable
	BlockRule
)

// BlockMapping ties a 1-indexed inclusive source line range to a
// half-open rendered row range.
type BlockMapping struct {
	StartLine     int
	EndLine       int
	RenderedStart float64
	RenderedEnd   float64
	Kind          BlockKind
}

// ContainsLine reports whether the source line falls in this block.
func (b BlockMapping) ContainsLine(line int) bool {
	return line >= b.StartLine && line <= b.EndLine
}

// ContainsRendered reports whether the rendered offset falls in this block.
func (b BlockMapping) ContainsRendered(y float64) bool {
	return y >= b.RenderedStart && y < b.RenderedEnd
}

// Config tunes the feedback-loop debounce.
type Config struct {
	Debounce time.Duration
	MinDelta float64 // minimum offset change worth syncing, in rows
}

func DefaultConfig() Config {
	return Config{
		Debounce: 16 * time.Millisecond,
		MinDelta: 1.0,
	}
}

// Mapper converts between source lines and rendered offsets and arbitrates
// which view is allowed to drive the other.
type Mapper struct {
	cfg            Config
	mappings       []BlockMapping
	lineCount      int
	renderedHeight float64
	enabled        bool
	origin         Origin
	lastScroll     time.Time
	now            func() time.Time
}

func New() *Mapper {
	return NewWithConfig(DefaultConfig())
}

func NewWithConfig(cfg Config) *Mapper {
	return &Mapper{cfg: cfg, enabled: true, now: time.Now}
}

// SetEnabled turns synchronized scrolling on or off.
func (m *Mapper) SetEnabled(enabled bool) { m.enabled = enabled }

// Toggle flips synchronized scrolling and reports the new state.
func (m *Mapper) Toggle() bool {
	m.enabled = !m.enabled
	return m.enabled
}

// Enabled reports whether sync scrolling is active.
func (m *Mapper) Enabled() bool { return m.enabled }

// SetMappings replaces the block mappings for the current frame.
func (m *Mapper) SetMappings(mappings []BlockMapping) {
	m.mappings = mappings
}

// SetMetadata records totals for the proportional fallback.
func (m *Mapper) SetMetadata(lineCount int, renderedHeight float64) {
	m.lineCount = lineCount
	m.renderedHeight = renderedHeight
}

// ShouldSyncFrom reports whether a scroll from origin may drive the other
// view. A different origin scrolled recently means we are looking at our
// own echo, so the event is suppressed until the debounce window passes.
func (m *Mapper) ShouldSyncFrom(origin Origin) bool {
	if !m.enabled {
		return false
	}
	if m.origin == OriginNone || m.origin == origin {
		return true
	}
	if m.lastScroll.IsZero() {
		return true
	}
	return m.now().Sub(m.lastScroll) >= 3*m.cfg.Debounce
}

// MarkScroll records a scroll event from the given origin.
func (m *Mapper) MarkScroll(origin Origin) {
	m.origin = origin
	m.lastScroll = m.now()
}

// ClearOrigin releases the active origin once the debounce has passed.
func (m *Mapper) ClearOrigin() {
	if !m.lastScroll.IsZero() && m.now().Sub(m.lastScroll) >= 2*m.cfg.Debounce {
		m.origin = OriginNone
	}
}

// SignificantDelta reports whether an offset change is big enough to sync.
func (m *Mapper) SignificantDelta(newOffset, oldOffset float64) bool {
	d := newOffset - oldOffset
	if d < 0 {
		d = -d
	}
	return d >= m.cfg.MinDelta
}

func (m *Mapper) clampLine(line int) int {
	if line < 1 {
		return 1
	}
	if m.lineCount > 0 && line > m.lineCount {
		return m.lineCount
	}
	return line
}

func (m *Mapper) clampRendered(y float64) float64 {
	if y < 0 {
		return 0
	}
	if m.renderedHeight > 0 && y > m.renderedHeight {
		return m.renderedHeight
	}
	return y
}

// LineToRendered converts a source line to a rendered row offset.
func (m *Mapper) LineToRendered(line int) float64 {
	line = m.clampLine(line)

	for _, b := range m.mappings {
		if !b.ContainsLine(line) {
			continue
		}
		lineRange := b.EndLine - b.StartLine
		if lineRange > 0 {
			progress := float64(line-b.StartLine) / float64(lineRange)
			return b.RenderedStart + progress*(b.RenderedEnd-b.RenderedStart)
		}
		return b.RenderedStart
	}

	var before, after *BlockMapping
	for i := range m.mappings {
		b := &m.mappings[i]
		if b.EndLine < line {
			before = b
		}
		if b.StartLine > line && after == nil {
			after = b
		}
	}
	switch {
	case before != nil && after != nil:
		progress := float64(line-before.EndLine) / float64(after.StartLine-before.EndLine)
		return before.RenderedEnd + progress*(after.RenderedStart-before.RenderedEnd)
	case before != nil:
		return before.RenderedEnd
	case after != nil:
		progress := float64(line) / float64(after.StartLine)
		return progress * after.RenderedStart
	default:
		return m.proportionalLineToRendered(line)
	}
}

// RenderedToLine converts a rendered row offset to a source line.
func (m *Mapper) RenderedToLine(y float64) int {
	y = m.clampRendered(y)

	for _, b := range m.mappings {
		if !b.ContainsRendered(y) {
			continue
		}
		renderedRange := b.RenderedEnd - b.RenderedStart
		if renderedRange > 0 {
			progress := (y - b.RenderedStart) / renderedRange
			return b.StartLine + int(progress*float64(b.EndLine-b.StartLine))
		}
		return b.StartLine
	}

	var before, after *BlockMapping
	for i := range m.mappings {
		b := &m.mappings[i]
		if b.RenderedEnd < y {
			before = b
		}
		if b.RenderedStart > y && after == nil {
			after = b
		}
	}
	switch {
	case before != nil && after != nil:
		progress := (y - before.RenderedEnd) / (after.RenderedStart - before.RenderedEnd)
		return before.EndLine + int(progress*float64(after.StartLine-before.EndLine))
	case before != nil:
		return before.EndLine
	case after != nil:
		progress := y / after.RenderedStart
		line := int(progress * float64(after.StartLine))
		return max(line, 1)
	default:
		return m.proportionalRenderedToLine(y)
	}
}

func (m *Mapper) proportionalLineToRendered(line int) float64 {
	if m.lineCount == 0 || m.renderedHeight <= 0 {
		return 0
	}
	return float64(line) / float64(m.lineCount) * m.renderedHeight
}

func (m *Mapper) proportionalRenderedToLine(y float64) int {
	if m.lineCount == 0 || m.renderedHeight <= 0 {
		return 1
	}
	line := int(y / m.renderedHeight * float64(m.lineCount))
	return max(line, 1)
}
