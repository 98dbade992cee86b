package testutil

import (
	"github.com/alicebob/miniredis/v2"
)

type RedisServer struct {
	server *miniredis.Miniredis
}

func NewRedisServer() *RedisServer {
	server, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	return &RedisServer{
		server: server,
	}
}

func (s *RedisServer) Addr() string {
	return s.server.Addr()
}

// TTL returns the time to live of key.
func (s *RedisServer) TTL(key string) int64 {
	return int64(s.server.TTL(key).Seconds())
}

// FlushAll clears every key, so tests can start from an empty journal.
func (s *RedisServer) FlushAll() {
	s.server.FlushAll()
}

func (s *RedisServer) Close() {
	s.server.Close()
}
