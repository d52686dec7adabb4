package client

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"

	"casedesk/internal/model"
)

// Status is the loading/error pair tracked for one resource.
type Status struct {
	Loading bool
	Err     string
}

// Snapshot is a copy of the state handed to subscribers and callers.
type Snapshot struct {
	Messages       []model.ChatMessage
	Files          []model.UploadedFile
	MessagesStatus Status
	FilesStatus    Status
	ActiveSection  string
}

type resource int

const (
	resourceMessages resource = iota
	resourceFiles
)

// State is the single shared store views read from. Data only changes after
// the server confirms a call; a failed call records its message in the
// resource's Err and leaves the data as it was.
type State struct {
	api *Client

	mu        sync.Mutex
	snap      Snapshot
	listeners []func(Snapshot)
}

func NewState(api *Client) *State {
	return &State{api: api}
}

// Subscribe registers fn to receive a snapshot after every change.
func (s *State) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *State) SelectSection(key string) {
	s.update(func(snap *Snapshot) {
		snap.ActiveSection = key
	})
}

func (s *State) FetchMessages(ctx context.Context) error {
	s.begin(resourceMessages)
	msgs, err := s.api.ListMessages(ctx)
	if err != nil {
		return s.fail(resourceMessages, err)
	}
	s.finish(resourceMessages, func(snap *Snapshot) {
		snap.Messages = msgs
	})
	return nil
}

func (s *State) SendMessage(ctx context.Context, sender, content string) (*model.ChatMessage, error) {
	s.begin(resourceMessages)
	msg, err := s.api.SendMessage(ctx, sender, content)
	if err != nil {
		return nil, s.fail(resourceMessages, err)
	}
	s.finish(resourceMessages, func(snap *Snapshot) {
		snap.Messages = append(snap.Messages, *msg)
	})
	return msg, nil
}

func (s *State) DeleteMessage(ctx context.Context, id string) error {
	s.begin(resourceMessages)
	if err := s.api.DeleteMessage(ctx, id); err != nil {
		return s.fail(resourceMessages, err)
	}
	s.finish(resourceMessages, func(snap *Snapshot) {
		snap.Messages = slices.DeleteFunc(snap.Messages, func(m model.ChatMessage) bool {
			return m.ID == id
		})
	})
	return nil
}

func (s *State) FetchFiles(ctx context.Context) error {
	s.begin(resourceFiles)
	files, err := s.api.ListFiles(ctx)
	if err != nil {
		return s.fail(resourceFiles, err)
	}
	s.finish(resourceFiles, func(snap *Snapshot) {
		snap.Files = files
	})
	return nil
}

// UploadFile re-reads the whole list afterwards; the directory is the source of truth.
func (s *State) UploadFile(ctx context.Context, name string, content io.Reader) (*UploadResult, error) {
	s.begin(resourceFiles)
	res, err := s.api.UploadFile(ctx, name, content)
	if err != nil {
		return nil, s.fail(resourceFiles, err)
	}
	if err := s.FetchFiles(ctx); err != nil {
		return res, err
	}
	return res, nil
}

func (s *State) DeleteFile(ctx context.Context, name string) error {
	s.begin(resourceFiles)
	if err := s.api.DeleteFile(ctx, name); err != nil {
		return s.fail(resourceFiles, err)
	}
	return s.FetchFiles(ctx)
}

// FileText is read-only and does not touch the store.
func (s *State) FileText(ctx context.Context, name string) (*FileText, error) {
	return s.api.FileText(ctx, name)
}

func (s *State) begin(r resource) {
	s.update(func(snap *Snapshot) {
		st := statusOf(snap, r)
		st.Loading = true
		st.Err = ""
	})
}

func (s *State) fail(r resource, err error) error {
	s.update(func(snap *Snapshot) {
		st := statusOf(snap, r)
		st.Loading = false
		st.Err = errorMessage(err)
	})
	return err
}

func (s *State) finish(r resource, apply func(*Snapshot)) {
	s.update(func(snap *Snapshot) {
		apply(snap)
		statusOf(snap, r).Loading = false
	})
}

func (s *State) update(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	snap := s.copyLocked()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *State) copyLocked() Snapshot {
	out := s.snap
	out.Messages = slices.Clone(s.snap.Messages)
	out.Files = slices.Clone(s.snap.Files)
	return out
}

func statusOf(snap *Snapshot, r resource) *Status {
	if r == resourceFiles {
		return &snap.FilesStatus
	}
	return &snap.MessagesStatus
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
