package zammi

import "testing"

func TestDialoguePaging(t *testing.T) {
	d := NewDialogue("post", DialoguePage{Text: "one"}, DialoguePage{Text: "two"})
	d.OnFinish = "video:assets/post.mp4"

	if got := d.Advance(); got != DialogueIgnored {
		t.Errorf("advance while hidden = %v, want ignored", got)
	}
	d.Show()
	if !d.Visible() || d.Page().Text != "one" {
		t.Fatalf("after Show: visible=%v page=%q", d.Visible(), d.Page().Text)
	}
	if got := d.Advance(); got != DialogueNextPage || d.Page().Text != "two" {
		t.Fatalf("advance 1 = %v, page %q", got, d.Page().Text)
	}
	if got := d.Advance(); got != DialogueFinished {
		t.Fatalf("advance 2 = %v, want finished", got)
	}
	if d.Visible() || !d.Dismissed() || d.PageIndex() != 0 {
		t.Errorf("after finish: visible=%v dismissed=%v page=%d", d.Visible(), d.Dismissed(), d.PageIndex())
	}
	d.Show()
	if d.Dismissed() {
		t.Error("Show should clear the dismissed flag")
	}
}

func TestDialogueClickRegion(t *testing.T) {
	win := Size{Width: 1280, Height: 720}
	d := NewDialogue("d", DialoguePage{Text: "a"}, DialoguePage{Text: "b"})
	d.Show()

	r := d.Region(win)
	if r.Y != 480 || r.Height != 240 || r.Width != 1280 {
		t.Fatalf("region = %+v, want bottom third", r)
	}
	if got := d.Click(Vec2{640, 100}, win); got != DialogueIgnored {
		t.Errorf("click above box = %v, want ignored", got)
	}
	if got := d.Click(Vec2{640, 600}, win); got != DialogueNextPage {
		t.Errorf("click in box = %v, want next page", got)
	}
	if got := d.Click(Vec2{10, 719}, win); got != DialogueFinished {
		t.Errorf("click on last page = %v, want finished", got)
	}
}

func TestDialogueSetPages(t *testing.T) {
	d := NewDialogue("d", DialoguePage{Text: "locked"})
	d.Show()
	d.SetPages(DialoguePage{Text: "thanks"}, DialoguePage{Text: "bye"})
	if d.PageCount() != 2 || d.Page().Text != "thanks" {
		t.Errorf("pages = %d, page %q", d.PageCount(), d.Page().Text)
	}
	d.SetPages()
	if d.Visible() {
		t.Error("dialogue with no pages should hide")
	}
	d.Show()
	if d.Visible() {
		t.Error("Show with no pages should stay hidden")
	}
}

func TestDialogueRewind(t *testing.T) {
	d := NewDialogue("d", DialoguePage{Text: "a"}, DialoguePage{Text: "b"})
	d.Show()
	d.Advance()
	d.Hide()
	d.Rewind()
	d.Show()
	if d.PageIndex() != 0 || d.Page().Text != "a" {
		t.Errorf("after rewind: page %d %q", d.PageIndex(), d.Page().Text)
	}
}
