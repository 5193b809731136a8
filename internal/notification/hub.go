package notification

import (
	"net/http"
	"time"

	"github.com/credibilitycrm/gateway/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	// 느린 클라이언트 때문에 Store 호출자가 막히지 않도록 버퍼링
	sendBuffer = 8
)

// Hub - WebSocket 연결마다 Store를 구독해 변경 시 전체 목록을 push
type Hub struct {
	store    *Store
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewHub(store *Store, log *zap.Logger, allowedOrigins []string) *Hub {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &Hub{
		store: store,
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// Stream godoc
// @Summary Stream notifications over WebSocket
// @Tags notifications
// @Router /api/notifications/stream [get]
func (h *Hub) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	updates := make(chan []model.Notification, sendBuffer)
	unsubscribe := h.store.Subscribe(func(list []model.Notification) {
		select {
		case updates <- list:
		default:
			// 버퍼가 가득 차면 가장 오래된 스냅샷을 버리고 최신 것을 넣는다
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- list:
			default:
			}
		}
	})
	defer unsubscribe()

	// 클라이언트 종료 감지용 read loop
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, h.store.List()); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case list := <-updates:
			if err := h.write(conn, list); err != nil {
				h.log.Debug("Failed to push notifications", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, list []model.Notification) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(list)
}
