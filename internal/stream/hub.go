// Package stream pushes newly created posts to websocket subscribers of
// their author.
package stream

import (
	"context"
	"strings"
	"sync"

	"backend-yatube/internal/logging"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "posts:"
	channelSuffix  = ":created"
	channelPattern = channelPrefix + "*" + channelSuffix
)

// Hub fans new posts out to the websocket clients watching an author. With
// redis every instance hears every publish; without it delivery stays
// inside this process.
type Hub struct {
	redis   *redis.Client
	pubsub  *redis.PubSub
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	done    chan struct{}
}

type Client struct {
	Username string
	Send     chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		clients: map[string]map[*Client]struct{}{},
		done:    make(chan struct{}),
	}

	if redisClient == nil {
		close(h.done)
		return h
	}

	ctx := context.Background()
	pubsub := redisClient.PSubscribe(ctx, channelPattern)
	// Wait for the subscription to be confirmed so a publish right after
	// NewHub returns is not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		logging.Log.WithError(err).Warn("redis psubscribe failed, streaming locally")
		_ = pubsub.Close()
		close(h.done)
		return h
	}

	h.redis = redisClient
	h.pubsub = pubsub
	go h.listen(pubsub.Channel())
	return h
}

func (h *Hub) Register(username string) *Client {
	client := &Client{
		Username: username,
		Send:     make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[username] == nil {
		h.clients[username] = map[*Client]struct{}{}
	}
	h.clients[username][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if authorClients, ok := h.clients[client.Username]; ok {
		if _, ok := authorClients[client]; !ok {
			return
		}
		delete(authorClients, client)
		if len(authorClients) == 0 {
			delete(h.clients, client.Username)
		}
		close(client.Send)
	}
}

// Subscribers reports how many clients are watching username.
func (h *Hub) Subscribers(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[username])
}

// PublishPost announces a new post by username. When redis is available the
// message comes back through the pattern subscription and is delivered from
// there, so local clients receive it exactly once.
func (h *Hub) PublishPost(username string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(username), payload).Err()
		if err == nil {
			return
		}
		logging.Log.WithError(err).WithField("username", username).Warn("redis publish failed, delivering locally")
	}
	h.deliver(username, payload)
}

// Close stops the redis subscription, if any.
func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	err := h.pubsub.Close()
	<-h.done
	return err
}

func (h *Hub) listen(messages <-chan *redis.Message) {
	defer close(h.done)
	for msg := range messages {
		username := usernameFromChannel(msg.Channel)
		if username == "" {
			continue
		}
		h.deliver(username, []byte(msg.Payload))
	}
}

// deliver holds the read lock while sending so Unregister cannot close a
// channel mid-send. Slow clients drop messages instead of blocking.
func (h *Hub) deliver(username string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[username] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func redisChannel(username string) string {
	return channelPrefix + username + channelSuffix
}

func usernameFromChannel(ch string) string {
	// posts:{username}:created
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
