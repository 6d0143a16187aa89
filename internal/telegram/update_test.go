package telegram_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"tgdocs/internal/telegram"
	"tgdocs/internal/telegram/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDecodeUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("message with document is bound to bot", func(t *testing.T) {
		bot := new(mocks.MockFileGetter)
		raw := `{
			"update_id": 1001,
			"message": {
				"message_id": 7,
				"date": 1700000000,
				"chat": {"id": -100, "type": "group", "title": "Ops"},
				"from": {"id": 42, "is_bot": false, "first_name": "Sam"},
				"caption": "weekly",
				"document": {"file_id": "a", "file_unique_id": "b", "file_name": "r.pdf"}
			}
		}`

		u, err := telegram.DecodeUpdate(json.RawMessage(raw), bot)
		require.NoError(t, err)
		require.NotNil(t, u)

		assert.Equal(t, int64(1001), u.UpdateID)
		msg := u.EffectiveMessage()
		require.NotNil(t, msg)
		assert.Equal(t, int64(-100), msg.Chat.ID)
		assert.Equal(t, "weekly", *msg.Caption)
		require.NotNil(t, msg.Document)

		bot.On("GetFile", ctx, "a", time.Duration(0), mock.Anything).Return(&telegram.File{FileID: "a", FileUniqueID: "b"}, nil).Once()
		_, err = msg.Document.GetFile(ctx, 0)
		assert.NoError(t, err)
		bot.AssertExpectations(t)
	})

	t.Run("channel post", func(t *testing.T) {
		u, err := telegram.DecodeUpdate(json.RawMessage(`{"update_id":2,"channel_post":{"message_id":1,"date":1,"chat":{"id":5,"type":"channel"}}}`), nil)

		require.NoError(t, err)
		msg := u.EffectiveMessage()
		require.NotNil(t, msg)
		assert.Equal(t, "channel", msg.Chat.Type)
		assert.Nil(t, msg.Document)
	})

	t.Run("empty document is absent", func(t *testing.T) {
		u, err := telegram.DecodeUpdate(json.RawMessage(`{"update_id":3,"message":{"message_id":1,"date":1,"chat":{"id":5,"type":"private"},"document":{}}}`), nil)

		require.NoError(t, err)
		assert.Nil(t, u.EffectiveMessage().Document)
	})

	t.Run("no message", func(t *testing.T) {
		u, err := telegram.DecodeUpdate(json.RawMessage(`{"update_id":4}`), nil)

		require.NoError(t, err)
		assert.Nil(t, u.EffectiveMessage())
	})

	t.Run("null update", func(t *testing.T) {
		u, err := telegram.DecodeUpdate(json.RawMessage(`null`), nil)

		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("broken document", func(t *testing.T) {
		_, err := telegram.DecodeUpdate(json.RawMessage(`{"update_id":5,"message":{"message_id":1,"date":1,"chat":{"id":5,"type":"private"},"document":{"file_id":"a"}}}`), nil)

		assert.ErrorIs(t, err, telegram.ErrMissingField)
	})
}

func TestFile_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates with file_path", func(t *testing.T) {
		dl := new(mocks.MockDownloader)
		f, err := telegram.DecodeFile(json.RawMessage(`{"file_id":"a","file_unique_id":"b","file_size":5,"file_path":"documents/file_1.txt"}`), dl)
		require.NoError(t, err)

		dl.On("DownloadFile", ctx, "documents/file_1.txt").Return(io.NopCloser(strings.NewReader("hello")), nil).Once()

		rc, err := f.Download(ctx)
		require.NoError(t, err)
		defer rc.Close()

		b, _ := io.ReadAll(rc)
		assert.Equal(t, "hello", string(b))
		dl.AssertExpectations(t)
	})

	t.Run("no file path", func(t *testing.T) {
		f := (&telegram.File{FileID: "a", FileUniqueID: "b"}).Bind(new(mocks.MockDownloader))

		_, err := f.Download(ctx)

		assert.ErrorIs(t, err, telegram.ErrNoFilePath)
	})

	t.Run("unbound", func(t *testing.T) {
		path := "x"
		f := &telegram.File{FileID: "a", FileUniqueID: "b", FilePath: &path}

		_, err := f.Download(ctx)

		assert.ErrorIs(t, err, telegram.ErrNoBot)
	})
}
