package scroll

import (
	"math"
	"testing"
	"time"
)

func testMapper() *Mapper {
	m := New()
	m.SetMappings([]BlockMapping{
		{StartLine: 1, EndLine: 2, RenderedStart: 0, RenderedEnd: 20, Kind: BlockHeading},
		{StartLine: 5, EndLine: 10, RenderedStart: 50, RenderedEnd: 110, Kind: BlockParagraph},
		{StartLine: 14, EndLine: 14, RenderedStart: 150, RenderedEnd: 160, Kind: BlockRule},
	})
	m.SetMetadata(20, 200)
	return m
}

func TestLineToRenderedInsideBlock(t *testing.T) {
	m := testMapper()

	tests := []struct {
		line int
		want float64
	}{
		{1, 0},
		{2, 20},
		{5, 50},
		{10, 110},
		{7, 50 + (2.0/5.0)*60}, // interpolated within the block
		{14, 150},              // single-line block maps to its start
	}

	for _, tt := range tests {
		if got := m.LineToRendered(tt.line); math.Abs(got-tt.want) > 0.01 {
			t.Errorf("LineToRendered(%d) = %.2f, want %.2f", tt.line, got, tt.want)
		}
	}
}

func TestLineToRenderedBetweenBlocks(t *testing.T) {
	m := testMapper()

	// Lines 3..4 sit in the gap between block 1..2 (ends at 20) and
	// block 5..10 (starts at 50).
	got3 := m.LineToRendered(3)
	got4 := m.LineToRendered(4)
	if !(got3 > 20 && got3 < got4 && got4 < 50) {
		t.Errorf("Gap interpolation not monotone: line3=%.2f line4=%.2f", got3, got4)
	}
}

func TestLineToRenderedClamping(t *testing.T) {
	m := testMapper()

	atOne := m.LineToRendered(1)
	for _, line := range []int{-1, 0} {
		if got := m.LineToRendered(line); got != atOne {
			t.Errorf("LineToRendered(%d) = %.2f, want clamp to line 1 (%.2f)", line, got, atOne)
		}
	}

	// Far past the end clamps to the last line, never beyond the height.
	if got := m.LineToRendered(120); got > 200 {
		t.Errorf("LineToRendered(120) = %.2f, beyond total height", got)
	}
}

func TestRenderedToLineInsideBlock(t *testing.T) {
	m := testMapper()

	if got := m.RenderedToLine(0); got != 1 {
		t.Errorf("RenderedToLine(0) = %d, want 1", got)
	}
	if got := m.RenderedToLine(80); got < 5 || got > 10 {
		t.Errorf("RenderedToLine(80) = %d, want within 5..10", got)
	}
}

func TestRenderedToLineClamping(t *testing.T) {
	m := testMapper()

	if got := m.RenderedToLine(-50); got != 1 {
		t.Errorf("RenderedToLine(-50) = %d, want 1", got)
	}
	if got := m.RenderedToLine(1e9); got > 20 {
		t.Errorf("RenderedToLine(1e9) = %d, beyond line count", got)
	}
}

func TestRoundTripWithinOneLine(t *testing.T) {
	m := testMapper()

	for line := 1; line <= 14; line++ {
		back := m.RenderedToLine(m.LineToRendered(line))
		if d := back - line; d < -1 || d > 1 {
			t.Errorf("Round trip of line %d came back as %d", line, back)
		}
	}
}

func TestProportionalFallback(t *testing.T) {
	m := New()
	m.SetMetadata(100, 500)

	if got := m.LineToRendered(50); math.Abs(got-250) > 0.01 {
		t.Errorf("LineToRendered(50) = %.2f, want 250", got)
	}
	if got := m.RenderedToLine(250); got != 50 {
		t.Errorf("RenderedToLine(250) = %d, want 50", got)
	}
}

func TestNoDataConversions(t *testing.T) {
	m := New()

	if got := m.LineToRendered(7); got != 0 {
		t.Errorf("LineToRendered with no data = %.2f, want 0", got)
	}
	if got := m.RenderedToLine(40); got != 1 {
		t.Errorf("RenderedToLine with no data = %d, want 1", got)
	}
}

func TestDebouncePreventsFeedback(t *testing.T) {
	m := New()
	now := time.Now()
	m.now = func() time.Time { return now }

	m.MarkScroll(OriginRaw)

	// The other view reacting immediately is an echo.
	if m.ShouldSyncFrom(OriginRendered) {
		t.Error("Cross-origin sync must be suppressed inside the debounce window")
	}
	// The originating view keeps control.
	if !m.ShouldSyncFrom(OriginRaw) {
		t.Error("Same-origin sync must stay allowed")
	}

	// After the window passes, cross-origin is allowed again.
	now = now.Add(3 * DefaultConfig().Debounce)
	if !m.ShouldSyncFrom(OriginRendered) {
		t.Error("Cross-origin sync must resume after the debounce window")
	}
}

func TestClearOriginRespectsDebounce(t *testing.T) {
	m := New()
	now := time.Now()
	m.now = func() time.Time { return now }

	m.MarkScroll(OriginRendered)
	m.ClearOrigin()
	if m.ShouldSyncFrom(OriginRaw) {
		t.Error("Origin cleared too early")
	}

	now = now.Add(2 * DefaultConfig().Debounce)
	m.ClearOrigin()
	if !m.ShouldSyncFrom(OriginRaw) {
		t.Error("Origin not cleared after the debounce window")
	}
}

func TestDisabledMapperNeverSyncs(t *testing.T) {
	m := New()
	m.SetEnabled(false)

	if m.ShouldSyncFrom(OriginRaw) {
		t.Error("Disabled mapper must not sync")
	}
	if m.Toggle() != true {
		t.Error("Toggle must re-enable")
	}
	if !m.ShouldSyncFrom(OriginRaw) {
		t.Error("Re-enabled mapper must sync")
	}
}

func TestSignificantDelta(t *testing.T) {
	m := New()

	if m.SignificantDelta(10, 10.5) {
		t.Error("Half-row delta must be insignificant")
	}
	if !m.SignificantDelta(10, 12) {
		t.Error("Two-row delta must be significant")
	}
}
