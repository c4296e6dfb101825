package layout

import (
	"testing"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
)

// makeLine builds a line with one span covering r.
func makeLine(text string, r geom.Rect) Line {
	span := content.Span{BBox: r, Text: text, FontSize: 10, Alpha: 255}
	return Line{Rect: r, Spans: []content.Span{span}}
}

func TestFindTwoColumns(t *testing.T) {
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("Left column", geom.NewRect(50, 100, 300, 115)),
			makeLine("Right column", geom.NewRect(350, 100, 550, 115)),
		},
	}
	boxes := NewColumnFinder().Find(in)

	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d: %v", len(boxes), boxes)
	}
	if boxes[0].X0 >= boxes[1].X0 {
		t.Errorf("left column must come first, got %v then %v", boxes[0], boxes[1])
	}
}

func TestFindMergesParagraphLines(t *testing.T) {
	// Three stacked lines with equal borders and small gaps form one box.
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("one", geom.NewRect(50, 100, 300, 112)),
			makeLine("two", geom.NewRect(50, 115, 300, 127)),
			makeLine("three", geom.NewRect(50, 130, 300, 142)),
		},
	}
	boxes := NewColumnFinder().Find(in)

	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d: %v", len(boxes), boxes)
	}
	want := geom.NewRect(50, 100, 300, 142)
	if boxes[0] != want {
		t.Errorf("expected %v, got %v", want, boxes[0])
	}
}

func TestFindColumnsOrderedLeftBeforeRight(t *testing.T) {
	// Two full columns of stacked lines. Reading order visits the whole
	// left column before the right column.
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("L1", geom.NewRect(50, 100, 280, 112)),
			makeLine("R1", geom.NewRect(320, 100, 550, 112)),
			makeLine("L2", geom.NewRect(50, 115, 280, 127)),
			makeLine("R2", geom.NewRect(320, 115, 550, 127)),
			makeLine("L3", geom.NewRect(50, 130, 280, 142)),
		},
	}
	boxes := NewColumnFinder().Find(in)

	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d: %v", len(boxes), boxes)
	}
	if boxes[0].X0 != 50 || boxes[1].X0 != 320 {
		t.Errorf("wrong column order: %v", boxes)
	}
	if boxes[0].Y1 != 142 {
		t.Errorf("left column should span all three lines, got %v", boxes[0])
	}
}

func TestFindFullWidthHeadingThenColumns(t *testing.T) {
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("Heading", geom.NewRect(50, 50, 550, 70)),
			makeLine("left", geom.NewRect(50, 100, 280, 112)),
			makeLine("right", geom.NewRect(320, 100, 550, 112)),
		},
	}
	boxes := NewColumnFinder().Find(in)

	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d: %v", len(boxes), boxes)
	}
	if boxes[0].Y0 != 50 {
		t.Errorf("heading must come first, got %v", boxes)
	}
	if boxes[1].X0 != 50 || boxes[2].X0 != 320 {
		t.Errorf("columns out of order after heading: %v", boxes)
	}
}

func TestFindRespectsHeaderFooterMargins(t *testing.T) {
	cfg := DefaultColumnConfig()
	cfg.HeaderMargin = 60
	cfg.FooterMargin = 60
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("running header", geom.NewRect(50, 20, 300, 32)),
			makeLine("body", geom.NewRect(50, 100, 300, 112)),
			makeLine("page 1 of 9", geom.NewRect(50, 770, 300, 782)),
		},
	}
	boxes := NewColumnFinderWithConfig(cfg).Find(in)

	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d: %v", len(boxes), boxes)
	}
	if boxes[0].Y0 != 100 {
		t.Errorf("header and footer lines must be excluded, got %v", boxes[0])
	}
}

func TestFindExcludesLinesInAvoidRects(t *testing.T) {
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("body", geom.NewRect(50, 100, 300, 112)),
			makeLine("cell", geom.NewRect(60, 210, 140, 222)),
		},
		Avoid: []geom.Rect{geom.NewRect(50, 200, 400, 400)},
	}
	boxes := NewColumnFinder().Find(in)

	if len(boxes) != 1 {
		t.Fatalf("table cell text must not create a box, got %d: %v", len(boxes), boxes)
	}
}

func TestFindAvoidRectBlocksJoin(t *testing.T) {
	// Two paragraph fragments with an image between them stay separate even
	// with matching borders, because the union would cross the image.
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("above", geom.NewRect(50, 100, 300, 112)),
			makeLine("below", geom.NewRect(50, 300, 300, 312)),
		},
		Avoid: []geom.Rect{geom.NewRect(50, 150, 300, 280)},
	}
	boxes := NewColumnFinder().Find(in)

	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes around the avoid rect, got %d: %v", len(boxes), boxes)
	}
}

func TestFindVerticalTextBlocksJoin(t *testing.T) {
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("above", geom.NewRect(50, 100, 300, 112)),
			makeLine("below", geom.NewRect(50, 300, 300, 312)),
		},
		Vertical: []geom.Rect{geom.NewRect(100, 150, 115, 280)},
	}
	boxes := NewColumnFinder().Find(in)

	if len(boxes) != 2 {
		t.Fatalf("vertical text must act as a wall, got %d: %v", len(boxes), boxes)
	}
}

func TestFindSnapsRaggedEdges(t *testing.T) {
	// Edges off by up to 2 units snap together and the lines join.
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("one", geom.NewRect(50, 100, 300, 112)),
			makeLine("two", geom.NewRect(52, 115, 298, 127)),
		},
	}
	boxes := NewColumnFinder().Find(in)

	if len(boxes) != 1 {
		t.Fatalf("ragged paragraph edges should still merge, got %d: %v", len(boxes), boxes)
	}
}

func TestFindShadedBackgroundKeepsAsideSeparate(t *testing.T) {
	shade := content.DrawingPath{
		BBox: geom.NewRect(320, 95, 560, 150),
		Kind: content.PathFill,
	}
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("body", geom.NewRect(50, 100, 300, 112)),
			makeLine("aside", geom.NewRect(330, 100, 550, 112)),
		},
		Paths: []content.DrawingPath{shade},
	}

	cfg := DefaultColumnConfig()
	cfg.ShadedLast = true
	boxes := NewColumnFinderWithConfig(cfg).Find(in)

	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d: %v", len(boxes), boxes)
	}
	if boxes[len(boxes)-1].X0 != 330 {
		t.Errorf("shaded aside must come last, got %v", boxes)
	}
}

func TestFindExtendRight(t *testing.T) {
	cfg := DefaultColumnConfig()
	cfg.ExtendRight = true
	in := ColumnInput{
		PageRect: geom.NewRect(0, 0, 600, 800),
		Lines: []Line{
			makeLine("a full width line of body text", geom.NewRect(50, 100, 550, 112)),
			makeLine("short last line", geom.NewRect(50, 115, 200, 127)),
		},
	}
	boxes := NewColumnFinderWithConfig(cfg).Find(in)

	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d: %v", len(boxes), boxes)
	}
	if boxes[0].X1 != 550 {
		t.Errorf("short line should extend to the text area right edge, got %v", boxes[0])
	}
}

func TestFindEmptyPage(t *testing.T) {
	boxes := NewColumnFinder().Find(ColumnInput{PageRect: geom.NewRect(0, 0, 600, 800)})
	if len(boxes) != 0 {
		t.Fatalf("empty page must yield no boxes, got %d", len(boxes))
	}
}

func TestFindOrderIndependentOfInput(t *testing.T) {
	// The box sequence depends on geometry only, not on the order lines
	// arrive in.
	lines := []Line{
		makeLine("heading", geom.NewRect(50, 60, 550, 75)),
		makeLine("l1", geom.NewRect(50, 100, 300, 112)),
		makeLine("l2", geom.NewRect(50, 115, 300, 127)),
		makeLine("r1", geom.NewRect(350, 100, 550, 112)),
		makeLine("r2", geom.NewRect(350, 115, 550, 127)),
	}
	page := geom.NewRect(0, 0, 600, 800)
	want := NewColumnFinder().Find(ColumnInput{PageRect: page, Lines: lines})
	if len(want) == 0 {
		t.Fatal("fixture must produce boxes")
	}

	perms := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}
	for _, perm := range perms {
		shuffled := make([]Line, len(lines))
		for i, j := range perm {
			shuffled[i] = lines[j]
		}
		got := NewColumnFinder().Find(ColumnInput{PageRect: page, Lines: shuffled})
		if len(got) != len(want) {
			t.Fatalf("box count changed for %v: %v vs %v", perm, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("box %d changed for %v: %v vs %v", i, perm, got[i], want[i])
			}
		}
	}
}
