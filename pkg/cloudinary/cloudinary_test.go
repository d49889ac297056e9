package cloudinary

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)

	svc, err := New(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", Folder: "/scholar-hub/"}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestBuildPublicID(t *testing.T) {
	now := time.Unix(1700000000, 0)

	require.Equal(t, "My-Photo-1700000000", buildPublicID("My Photo.PNG", false, now))
	require.Equal(t, "resume-v2-1700000000.pdf", buildPublicID("resume v2.PDF", true, now))
	require.Equal(t, "upload-1700000000", buildPublicID("???.png", false, now))
}

func TestResourceFor(t *testing.T) {
	resourceType, folder := resourceFor("pdf")
	require.Equal(t, "raw", resourceType)
	require.Equal(t, "documents", folder)

	resourceType, folder = resourceFor("image")
	require.Equal(t, "image", resourceType)
	require.Equal(t, "photos", folder)

	require.Equal(t, "scholar-hub/photos", joinFolder("/scholar-hub/", "photos"))
	require.Equal(t, "photos", joinFolder("", "photos"))
}
