package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/canvas/internal/model"
)

// MustRecord converts a literal map into a Record or fails the test.
func MustRecord(t testing.TB, m map[string]any) model.Record {
	t.Helper()
	rec, err := model.RecordFromMap(m)
	require.NoError(t, err)
	return rec
}

// CardDocument returns a small valid page: a "page" container holding a
// "card" container (backgroundColor #fff) with a "title" text child.
func CardDocument() model.Document {
	doc := model.NewDocument()

	page := model.NewElement("page", model.TypeContainer)
	page.Children = []string{"card"}

	card := model.NewElement("card", model.TypeContainer)
	card.ParentID = "page"
	card.Style["backgroundColor"] = model.String("#fff")
	card.Children = []string{"title"}

	title := model.NewElement("title", model.TypeText)
	title.ParentID = "card"
	title.Props = model.TextProps{Content: "Title", Tag: "h2"}

	for _, el := range []*model.Element{page, card, title} {
		doc.Elements[el.ID] = el
	}
	doc.RootElementIDs = []string{"page"}
	return doc
}

// CardComponent returns a valid component with template ids "t-card" and
// "t-title", shaped like the card subtree of CardDocument.
func CardComponent() *model.Component {
	card := model.NewElement("t-card", model.TypeContainer)
	card.Style["backgroundColor"] = model.String("#fff")
	card.Children = []string{"t-title"}

	title := model.NewElement("t-title", model.TypeText)
	title.ParentID = "t-card"
	title.Props = model.TextProps{Content: "Title", Tag: "h2"}

	return &model.Component{
		ID:            "card",
		Name:          "Card",
		Category:      "layout",
		Elements:      map[string]*model.Element{"t-card": card, "t-title": title},
		RootElementID: "t-card",
		Variants:      []model.Variant{},
		Props:         []model.PropDef{},
	}
}
