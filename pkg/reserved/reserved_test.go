package reserved

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifiersIsACopy(t *testing.T) {
	ids := Identifiers()
	ids[0] = "changed"
	assert.Equal(t, "UIStrings", Identifiers()[0])
	assert.True(t, Contains("str_"))
	assert.False(t, Contains("changed"))
}

func TestPresent(t *testing.T) {
	code := []byte(`const UIStrings={a:"b"};const str_=i18n.createIcuMessageFnX(UIStrings);`)
	assert.Equal(t, []string{"UIStrings", "str_"}, Present(code, Identifiers()))
	assert.Empty(t, Present([]byte("var $UIStrings, UIStrings2, my_str_;"), Identifiers()))
	assert.Equal(t, []string{"str_"}, Present([]byte("str_"), Identifiers()))
}
