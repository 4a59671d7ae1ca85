package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSpace(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "  4(4)\u00a0\u00a05(4) ", expected: "4(4) 5(4)"},
		{in: "a\n\tb", expected: "a b"},
		{in: "", expected: ""},
		{in: "x&nbsp;y", expected: "x y"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeSpace(test.in))
	}
}

func TestText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div>
			<a href="/profiles.php?12">  Alpha
				Player </a>
			<a>no href</a>
		</div>
	`))
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "Alpha Player", Text(doc.Find("a").First()))
	require.Equal(t, "Alpha Player no href", Text(doc.Find("div")))
}
