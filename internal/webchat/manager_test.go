package webchat

import (
	"strconv"
	"sync"
	"testing"

	"github.com/coder/websocket"
)

func TestConnManager_Register(t *testing.T) {
	m := NewConnManager()
	conn := &websocket.Conn{}

	m.Register("anon_1", "tab-1", conn)

	if active := m.GetActive("anon_1", "tab-1"); active != conn {
		t.Errorf("Expected connection %v, got %v", conn, active)
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 connection, got %d", m.Count())
	}
}

func TestConnManager_Unregister(t *testing.T) {
	m := NewConnManager()
	conn := &websocket.Conn{}

	m.Register("anon_1", "tab-1", conn)
	m.Unregister("anon_1", "tab-1", conn)

	if active := m.GetActive("anon_1", "tab-1"); active != nil {
		t.Errorf("Expected nil connection, got %v", active)
	}
	if m.Count() != 0 {
		t.Errorf("Expected 0 connections, got %d", m.Count())
	}
}

func TestConnManager_UnregisterOtherTabKeepsActive(t *testing.T) {
	m := NewConnManager()
	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	m.Register("anon_1", "tab-1", conn1)
	m.Register("anon_1", "tab-2", conn2)
	m.Unregister("anon_1", "tab-1", conn1)

	if active := m.GetActive("anon_1", "tab-2"); active != conn2 {
		t.Errorf("Expected connection %v, got %v", conn2, active)
	}
}

func TestConnManager_StaleUnregisterIgnored(t *testing.T) {
	m := NewConnManager()
	current := &websocket.Conn{}
	stale := &websocket.Conn{}

	m.Register("anon_1", "tab-1", current)
	m.Unregister("anon_1", "tab-1", stale)

	if active := m.GetActive("anon_1", "tab-1"); active != current {
		t.Errorf("Expected current connection to survive stale unregister")
	}
}

func TestConnManager_ConcurrentAccess(t *testing.T) {
	m := NewConnManager()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			m.Register("anon_c", "tab-"+strconv.Itoa(i), &websocket.Conn{})
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			m.GetActive("anon_c", "tab-"+strconv.Itoa(i))
		}
	}()

	wg.Wait()
	if m.Count() != 1000 {
		t.Errorf("Expected 1000 connections, got %d", m.Count())
	}
}
