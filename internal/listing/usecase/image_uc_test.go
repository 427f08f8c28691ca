package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/propview/realty-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadImages_RoundTrip(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	ctx := context.Background()

	created, err := uc.CreateListing(ctx, testPrincipal(domain.RoleSeller), testInput())
	require.NoError(t, err)

	payload := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02, 0x03}
	files := []Upload{
		{Reader: bytes.NewReader(payload), Filename: "front.jpg", ContentType: "image/jpeg"},
		{Reader: bytes.NewReader([]byte("png bytes")), Filename: "back.png", ContentType: "image/png"},
	}

	blobIDs, listing, err := uc.UploadImages(ctx, created.ID, files)
	require.NoError(t, err)
	require.Len(t, blobIDs, 2)
	assert.Equal(t, blobIDs, listing.Images)

	rc, img, err := uc.FetchImage(ctx, blobIDs[0])
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "image/jpeg", img.ContentType)
	assert.Equal(t, "front.jpg", img.Filename)
	assert.Equal(t, int64(len(payload)), img.Length)
}

func TestUploadImages_Empty(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	_, _, err := uc.UploadImages(context.Background(), "000000000000000000000001", nil)
	assert.ErrorIs(t, err, domain.ErrNoImages)
}

func TestUploadImages_MissingListingLeavesOrphans(t *testing.T) {
	uc, _, store, _ := newTestUsecase()
	ctx := context.Background()

	files := []Upload{{Reader: bytes.NewReader([]byte("img")), Filename: "a.jpg", ContentType: "image/jpeg"}}

	blobIDs, _, err := uc.UploadImages(ctx, "000000000000000000000099", files)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	// the blob was written before the link failed and stays behind
	require.Len(t, blobIDs, 1)
	store.mu.Lock()
	_, ok := store.blobs[blobIDs[0]]
	store.mu.Unlock()
	assert.True(t, ok)
}

func TestAttachImages_Empty(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	_, err := uc.AttachImages(context.Background(), "000000000000000000000001", nil)
	assert.ErrorIs(t, err, domain.ErrNoImages)
}

func TestAttachImages_ConcurrentDisjointSets(t *testing.T) {
	uc, _, store, _ := newTestUsecase()
	ctx := context.Background()

	created, err := uc.CreateListing(ctx, testPrincipal(domain.RoleSeller), testInput())
	require.NoError(t, err)

	const workers = 4
	ids := make([][]string, workers)
	for i := range ids {
		blobID, err := store.Put(ctx, bytes.NewReader([]byte(fmt.Sprintf("img-%d", i))), fmt.Sprintf("%d.jpg", i), "image/jpeg", created.ID)
		require.NoError(t, err)
		ids[i] = []string{blobID}
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.AttachImages(ctx, created.ID, ids[i])
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := uc.GetListing(ctx, created.ID, "")
	require.NoError(t, err)
	require.Len(t, got.Images, workers)
	for i := 0; i < workers; i++ {
		assert.Contains(t, got.Images, "/api/listings/image/"+ids[i][0])
	}
}

func TestDetachImages_RemovesOnlyGiven(t *testing.T) {
	uc, _, store, _ := newTestUsecase()
	ctx := context.Background()

	created, err := uc.CreateListing(ctx, testPrincipal(domain.RoleSeller), testInput())
	require.NoError(t, err)

	var blobIDs []string
	for i := 0; i < 3; i++ {
		id, err := store.Put(ctx, bytes.NewReader([]byte("img")), fmt.Sprintf("%d.jpg", i), "image/jpeg", created.ID)
		require.NoError(t, err)
		blobIDs = append(blobIDs, id)
	}
	_, err = uc.AttachImages(ctx, created.ID, blobIDs)
	require.NoError(t, err)

	listing, err := uc.DetachImages(ctx, created.ID, blobIDs[:2])
	require.NoError(t, err)
	assert.Equal(t, []string{blobIDs[2]}, listing.Images)

	_, _, err = uc.FetchImage(ctx, blobIDs[0])
	assert.ErrorIs(t, err, domain.ErrImageNotFound)
	_, _, err = uc.FetchImage(ctx, blobIDs[2])
	assert.NoError(t, err)
}

func TestDetachImages_Empty(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	_, err := uc.DetachImages(context.Background(), "000000000000000000000001", nil)
	assert.ErrorIs(t, err, domain.ErrNoImages)
}

func TestFetchImage_PlaceholderIDs(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	ctx := context.Background()

	for _, id := range []string{"", "null", "undefined", "not-a-valid-id"} {
		_, _, err := uc.FetchImage(ctx, id)
		assert.ErrorIs(t, err, domain.ErrInvalidImageID, "id %q", id)
	}
}

func TestFetchImage_NotFound(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	_, _, err := uc.FetchImage(context.Background(), "0000000000000000000000aa")
	assert.ErrorIs(t, err, domain.ErrImageNotFound)
}

func TestFetchImage_DefaultContentType(t *testing.T) {
	uc, _, store, _ := newTestUsecase()
	ctx := context.Background()

	blobID, err := store.Put(ctx, bytes.NewReader([]byte("img")), "a.bin", "", "000000000000000000000001")
	require.NoError(t, err)

	rc, img, err := uc.FetchImage(ctx, blobID)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/jpeg", img.ContentType)
}