package chathttp

import (
	"sync"

	"github.com/LubyRuffy/orchat/chat"
	"github.com/LubyRuffy/orchat/openrouterapi"
)

// session 把一个 Conversation 与其流式事件出口绑在一起。
// Ask 始终在持有 mu 的情况下执行，sink 的换入换出由同一把锁保护，
// 因此 Conversation 的回调读取 sink 时不需要再加锁。
type session struct {
	mu   sync.Mutex
	conv *chat.Conversation
	sink func(event streamEvent)
}

func (s *session) emit(event streamEvent) {
	if s.sink != nil {
		s.sink(event)
	}
}

// sessionStore 按 session_id 维护会话，所有会话共享同一套工具与补全驱动。
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	create   func(emit func(streamEvent)) (*chat.Conversation, error)
}

func newSessionStore(create func(emit func(streamEvent)) (*chat.Conversation, error)) *sessionStore {
	return &sessionStore{
		sessions: map[string]*session{},
		create:   create,
	}
}

// resolve 返回 id 对应的会话；id 为空时新建会话并分配 session_id。
// 找不到已有会话时返回 false。
func (st *sessionStore) resolve(id string) (string, *session, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id != "" {
		s, ok := st.sessions[id]
		return id, s, ok, nil
	}

	s := &session{}
	conv, err := st.create(s.emit)
	if err != nil {
		return "", nil, false, err
	}
	s.conv = conv
	id = openrouterapi.NewSessionID()
	st.sessions[id] = s
	return id, s, true, nil
}
