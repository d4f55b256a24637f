package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractContact(t *testing.T) {
	text := "Jane Q Doe Senior Engineer jane.doe@example.com +6281234567890 Jakarta"
	c := ExtractContact(text)

	assert.Equal(t, "Jane Q Doe", c.Name)
	assert.Equal(t, "jane.doe@example.com", c.Email)
	assert.Equal(t, "+6281234567890", c.Phone)
}

func TestExtractContactMissingFields(t *testing.T) {
	c := ExtractContact("John Smith")

	assert.Equal(t, "John Smith", c.Name)
	assert.Empty(t, c.Email)
	assert.Empty(t, c.Phone)
}

func TestExtractContactPhoneWithoutPlus(t *testing.T) {
	c := ExtractContact("Alex Chen Developer reach me at 08123456789 or alex@mail.co")

	assert.Equal(t, "08123456789", c.Phone)
	assert.Equal(t, "alex@mail.co", c.Email)
}

func TestExtractTextRejectsNonPDF(t *testing.T) {
	_, err := ExtractText([]byte("this is not a pdf"))
	assert.Error(t, err)
}
