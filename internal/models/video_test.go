package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeLabels(t *testing.T) {
	t.Run("CollapsesDuplicates", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, DedupeLabels([]string{"a", "b", "a"}))
	})

	t.Run("KeepsFirstOccurrenceOrder", func(t *testing.T) {
		assert.Equal(t, []string{"b", "a", "c"}, DedupeLabels([]string{"b", "a", "b", "c", "a"}))
	})

	t.Run("NilInput", func(t *testing.T) {
		assert.Empty(t, DedupeLabels(nil))
	})
}

func TestLabelCodec(t *testing.T) {
	t.Run("RoundTripDedupes", func(t *testing.T) {
		blob, err := EncodeLabels([]string{"a", "b", "a"})
		require.NoError(t, err)

		labels, err := DecodeLabels(blob)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, labels)
	})

	t.Run("NilEncodesAsEmptyArray", func(t *testing.T) {
		blob, err := EncodeLabels(nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", blob)
	})

	t.Run("EmptyBlobDecodesToEmptySlice", func(t *testing.T) {
		labels, err := DecodeLabels("")
		require.NoError(t, err)
		require.NotNil(t, labels)
		assert.Empty(t, labels)
	})

	t.Run("NullBlobDecodesToEmptySlice", func(t *testing.T) {
		labels, err := DecodeLabels("null")
		require.NoError(t, err)
		require.NotNil(t, labels)
		assert.Empty(t, labels)
	})

	t.Run("MalformedBlob", func(t *testing.T) {
		_, err := DecodeLabels("{not json")
		assert.Error(t, err)
	})
}

func TestVideoFieldsValidate(t *testing.T) {
	valid := VideoFields{
		Title:         "A title",
		EmbedLink:     "https://example.com/embed/1",
		ThumbnailLink: "https://example.com/thumb/1.jpg",
	}

	t.Run("Valid", func(t *testing.T) {
		f := valid
		assert.NoError(t, f.Validate())
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		for _, clear := range []func(*VideoFields){
			func(f *VideoFields) { f.Title = "" },
			func(f *VideoFields) { f.EmbedLink = "" },
			func(f *VideoFields) { f.ThumbnailLink = "" },
		} {
			f := valid
			clear(&f)
			var verr *ValidationError
			require.ErrorAs(t, f.Validate(), &verr)
		}
	})

	t.Run("OptionalFieldsMayBeEmpty", func(t *testing.T) {
		f := valid
		f.DownloadLink = ""
		f.Labels = nil
		assert.NoError(t, f.Validate())
	})
}

func TestBuildLabelIndex(t *testing.T) {
	index := BuildLabelIndex(3, map[string]int{"horror": 2, "comedy": 1, "action": 1})

	assert.Equal(t, 3, index.TotalVideos)
	assert.Equal(t, []LabelCount{
		{Label: "action", Count: 1},
		{Label: "comedy", Count: 1},
		{Label: "horror", Count: 2},
	}, index.Labels)
}
