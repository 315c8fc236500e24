package services

import (
	"testing"

	"github.com/regportal/registration-backend/v1/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContactByKind(t *testing.T) {
	kinds := map[string]models.FieldKind{
		"work_address": models.KindEmail,
		"contact":      models.KindPhone,
	}
	contact := ExtractContact(models.Payload{
		"work_address": models.StringValue("sara@example.com"),
		"contact":      models.StringValue("+966501234567"),
		"name":         models.StringValue("Sara"),
	}, kinds)

	require.NotNil(t, contact.Email)
	assert.Equal(t, "sara@example.com", *contact.Email)
	require.NotNil(t, contact.Phone)
	assert.Equal(t, "+966501234567", *contact.Phone)
}

func TestExtractContactByKeyHint(t *testing.T) {
	t.Run("latin hints", func(t *testing.T) {
		contact := ExtractContact(models.Payload{
			"Parent_Email":    models.StringValue("dad@example.com"),
			"whatsapp_number": models.StringValue("0501234567"),
		}, nil)

		require.NotNil(t, contact.Email)
		assert.Equal(t, "dad@example.com", *contact.Email)
		require.NotNil(t, contact.Phone)
		assert.Equal(t, "0501234567", *contact.Phone)
	})

	t.Run("arabic hints", func(t *testing.T) {
		contact := ExtractContact(models.Payload{
			"البريد الالكتروني": models.StringValue("sara@example.com"),
			"رقم الجوال":        models.StringValue("0501234567"),
		}, nil)

		require.NotNil(t, contact.Email)
		assert.Equal(t, "sara@example.com", *contact.Email)
		require.NotNil(t, contact.Phone)
		assert.Equal(t, "0501234567", *contact.Phone)
	})
}

func TestExtractContactByValueSniffing(t *testing.T) {
	contact := ExtractContact(models.Payload{
		"primary": models.StringValue("sara@example.com"),
		"backup":  models.StringValue("+966 50 123 4567"),
		"note":    models.StringValue("prefers evenings"),
	}, nil)

	require.NotNil(t, contact.Email)
	assert.Equal(t, "sara@example.com", *contact.Email)
	require.NotNil(t, contact.Phone)
	assert.Equal(t, "+966 50 123 4567", *contact.Phone)
}

func TestExtractContactKindBeatsHints(t *testing.T) {
	// Schema metadata wins over a misleading key name.
	kinds := map[string]models.FieldKind{"secondary": models.KindEmail}
	contact := ExtractContact(models.Payload{
		"secondary": models.StringValue("real@example.com"),
		"email":     models.StringValue("decoy@example.com"),
	}, kinds)

	require.NotNil(t, contact.Email)
	assert.Equal(t, "real@example.com", *contact.Email)
}

func TestExtractContactNoMatch(t *testing.T) {
	t.Run("empty payload", func(t *testing.T) {
		contact := ExtractContact(models.Payload{}, nil)
		assert.Nil(t, contact.Email)
		assert.Nil(t, contact.Phone)
	})

	t.Run("short numbers are not phones", func(t *testing.T) {
		contact := ExtractContact(models.Payload{
			"age":  models.StringValue("42"),
			"name": models.StringValue("Sara"),
		}, nil)
		assert.Nil(t, contact.Phone)
	})

	t.Run("blank hinted values ignored", func(t *testing.T) {
		contact := ExtractContact(models.Payload{
			"email": models.StringValue("   "),
			"phone": models.NullValue(),
		}, nil)
		assert.Nil(t, contact.Email)
		assert.Nil(t, contact.Phone)
	})

	t.Run("non-string values ignored", func(t *testing.T) {
		contact := ExtractContact(models.Payload{
			"phone": models.NumberValue(501234567),
		}, nil)
		assert.Nil(t, contact.Phone)
	})
}

func TestExtractContactTrimsValues(t *testing.T) {
	contact := ExtractContact(models.Payload{
		"email": models.StringValue("  sara@example.com  "),
	}, nil)

	require.NotNil(t, contact.Email)
	assert.Equal(t, "sara@example.com", *contact.Email)
}
