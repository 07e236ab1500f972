package dateparse_test

import (
	"testing"
	"time"

	"github.com/SscSPs/income_converter/internal/adapters/dateparse"
	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Formats(t *testing.T) {
	want := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	inputs := []string{
		"12.03.2021",
		"12.3.2021",
		"2021-03-12",
		" 12/03/2021 ",
		"12-03-2021",
		"12-3-2021",
		"12.03.21",
		"2021.03.12",
		"12 March 2021",
	}

	p := dateparse.NewParser()
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := p.ParseDate(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseDate_Unparseable(t *testing.T) {
	p := dateparse.NewParser()
	for _, in := range []string{"", "   ", "not a date at all", "31.02.2021", "2021-02-30", "31/04/2021", "12.2021", "12345"} {
		t.Run(in, func(t *testing.T) {
			_, err := p.ParseDate(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUnparseableDate)
		})
	}
}
