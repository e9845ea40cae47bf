package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewsAreParsed(t *testing.T) {
	for _, name := range []string{"head", "foot", "index", "payment"} {
		assert.NotNil(t, Views.Lookup(name), name)
	}
}

func TestListingURL(t *testing.T) {
	assert.Equal(t, "/", listingURL("All", "", "popular"))
	assert.Equal(t, "/?q=denim&sort=low&tag=Women", listingURL("Women", "denim", "low"))
}

func TestFormatting(t *testing.T) {
	rupees := Funcs["rupees"].(func(int) string)
	assert.Equal(t, "₹999", rupees(999))

	tags := Funcs["tags"].(func([]string) string)
	assert.Equal(t, "Men • Casual", tags([]string{"Men", "Casual"}))
}
