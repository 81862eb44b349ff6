package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPropsCoversEveryType(t *testing.T) {
	for _, typ := range ElementTypes {
		p := DefaultProps(typ)
		require.NotNil(t, p, typ)
		assert.Equal(t, typ, p.Kind())
	}
	assert.Nil(t, DefaultProps("video"))
}

func TestPropsKeys(t *testing.T) {
	assert.Equal(t, []string{"label", "href", "target"}, PropsKeys(TypeButton))
	assert.True(t, IsPropsKey(TypeSlider, "slides"))
	assert.False(t, IsPropsKey(TypeText, "label"))
	assert.Nil(t, PropsKeys("video"))
}

func TestPropsToRecordOmitsEmpty(t *testing.T) {
	rec, err := PropsToRecord(ButtonProps{Label: "Go"})
	require.NoError(t, err)
	assert.Equal(t, Record{"label": String("Go")}, rec)
}

func TestPatchProps(t *testing.T) {
	p, err := PatchProps(ButtonProps{Label: "Go"}, Record{"href": String("/docs")})
	require.NoError(t, err)
	assert.Equal(t, ButtonProps{Label: "Go", Href: "/docs"}, p)

	p, err = PatchProps(ButtonProps{Label: "Go", Href: "/docs"}, Record{"href": nil})
	require.NoError(t, err)
	assert.Equal(t, ButtonProps{Label: "Go"}, p)
}

func TestPatchPropsRejectsUnknownKey(t *testing.T) {
	_, err := PatchProps(TextProps{Content: "Hi"}, Record{"label": String("nope")})
	assert.Error(t, err)
}

func TestPatchPropsRejectsWrongType(t *testing.T) {
	_, err := PatchProps(TextProps{Content: "Hi"}, Record{"content": Number(3)})
	assert.Error(t, err)
}

func TestDecodePropsSlides(t *testing.T) {
	rec := Record{
		"slides": List{
			Object{"imageSrc": String("a.png"), "caption": String("A")},
			Object{"imageSrc": String("b.png")},
		},
		"intervalMs": Number(3000),
	}
	p, err := DecodeProps(TypeSlider, rec, true)
	require.NoError(t, err)
	assert.Equal(t, SliderProps{
		Slides:     []Slide{{ImageSrc: "a.png", Caption: "A"}, {ImageSrc: "b.png"}},
		IntervalMs: 3000,
	}, p)
}

func TestDecodePropsEmptySlidesNotNil(t *testing.T) {
	p, err := DecodeProps(TypeSlider, Record{}, true)
	require.NoError(t, err)
	assert.NotNil(t, p.(SliderProps).Slides)
}

func TestDecodePropsLenientDropsBadKeys(t *testing.T) {
	p := DecodePropsLenient(TypeButton, Record{
		"label": String("x"),
		"bogus": Number(1),
		"href":  Number(3),
	})
	assert.Equal(t, ButtonProps{Label: "x"}, p)
}

func TestClonePropsSlider(t *testing.T) {
	orig := SliderProps{Slides: []Slide{{ImageSrc: "a"}}}
	clone := CloneProps(orig).(SliderProps)
	clone.Slides[0].ImageSrc = "b"
	assert.Equal(t, "a", orig.Slides[0].ImageSrc)
}
