package output

import (
	"strings"
	"testing"

	"github.com/marcus/qn/internal/models"
)

func TestFormatNoteLineUntitled(t *testing.T) {
	n := &models.NoteRecord{ID: "n-abc", Color: models.DefaultColor, CreatedAt: 1, UpdatedAt: 1}
	line := FormatNoteLine(n)
	if !strings.Contains(line, "(untitled)") {
		t.Errorf("line %q missing untitled placeholder", line)
	}
	if !strings.Contains(line, "n-abc") {
		t.Errorf("line %q missing id", line)
	}
}

func TestFormatNoteLongIncludesContent(t *testing.T) {
	n := &models.NoteRecord{ID: "n-abc", Title: "groceries", Content: "milk\neggs", Color: models.ColorMint, CreatedAt: 1, UpdatedAt: 2}
	long := FormatNoteLong(n)
	for _, want := range []string{"groceries", "milk", "eggs", "n-abc"} {
		if !strings.Contains(long, want) {
			t.Errorf("long view missing %q:\n%s", want, long)
		}
	}

	empty := &models.NoteRecord{ID: "n-x", Title: "t", Color: models.DefaultColor}
	if got := FormatNoteLong(empty); strings.HasSuffix(got, "\n\n") {
		t.Errorf("empty content should not leave trailing blank lines: %q", got)
	}
}

func TestFormatColorUnknownFallsBack(t *testing.T) {
	got := FormatColor(models.Color("plaid"))
	if !strings.Contains(got, "plaid") {
		t.Errorf("unknown color render %q should still name the color", got)
	}
}

func TestFormatPendingCount(t *testing.T) {
	if got := FormatPendingCount(0); !strings.Contains(got, "synced") {
		t.Errorf("zero queue render %q", got)
	}
	if got := FormatPendingCount(3); !strings.Contains(got, "3") {
		t.Errorf("nonzero queue render %q", got)
	}
}
