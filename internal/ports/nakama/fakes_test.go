package nakama

import (
	"context"
	"strconv"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type storedObject struct {
	value   string
	version int
}

type sentMessage struct {
	channelID string
	content   map[string]interface{}
}

// fakeNakama implements storageAPI and channelAPI in memory with Nakama's
// version semantics: "" writes unconditionally, "*" only creates, anything
// else must match the stored version.
type fakeNakama struct {
	objects map[string]*storedObject
	sent    []sentMessage
	sendErr error
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{objects: make(map[string]*storedObject)}
}

func objectKey(collection, key string) string { return collection + "/" + key }

func (f *fakeNakama) StorageRead(_ context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	var out []*api.StorageObject
	for _, r := range reads {
		obj, ok := f.objects[objectKey(r.Collection, r.Key)]
		if !ok {
			continue
		}
		out = append(out, &api.StorageObject{
			Collection: r.Collection,
			Key:        r.Key,
			Value:      obj.value,
			Version:    strconv.Itoa(obj.version),
		})
	}
	return out, nil
}

func (f *fakeNakama) MultiUpdate(_ context.Context, _ []*runtime.AccountUpdate, writes []*runtime.StorageWrite, deletes []*runtime.StorageDelete, _ []*runtime.WalletUpdate, _ bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error) {
	for _, w := range writes {
		if !f.versionOK(w.Collection, w.Key, w.Version) {
			return nil, nil, runtime.ErrStorageRejectedVersion
		}
	}
	for _, d := range deletes {
		if d.Version != "" && !f.versionOK(d.Collection, d.Key, d.Version) {
			return nil, nil, runtime.ErrStorageRejectedVersion
		}
	}

	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		k := objectKey(w.Collection, w.Key)
		obj, ok := f.objects[k]
		if !ok {
			obj = &storedObject{}
			f.objects[k] = obj
		}
		obj.value = w.Value
		obj.version++
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, Version: strconv.Itoa(obj.version)})
	}
	for _, d := range deletes {
		delete(f.objects, objectKey(d.Collection, d.Key))
	}
	return acks, nil, nil
}

func (f *fakeNakama) versionOK(collection, key, version string) bool {
	obj, exists := f.objects[objectKey(collection, key)]
	switch version {
	case "":
		return true
	case "*":
		return !exists
	default:
		return exists && strconv.Itoa(obj.version) == version
	}
}

func (f *fakeNakama) ChannelMessageSend(_ context.Context, channelID string, content map[string]interface{}, _, _ string, _ bool) (*rtapi.ChannelMessageAck, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return &rtapi.ChannelMessageAck{ChannelId: channelID}, nil
}

func (f *fakeNakama) sentTo(channelID string) []sentMessage {
	var out []sentMessage
	for _, m := range f.sent {
		if m.channelID == channelID {
			out = append(out, m)
		}
	}
	return out
}
