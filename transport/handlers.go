package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luma/shavar/protocol"
	"github.com/luma/shavar/ranges"
)

// listState is the JSON form of the chunks held for a list.
type listState struct {
	Name string `json:"name"`
	Adds string `json:"adds"`
	Subs string `json:"subs"`
}

func (h *HTTP) routes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	v1 := r.Group("/v1")
	v1.GET("/lists", h.getLists)

	decode := v1.Group("/decode")
	decode.POST("/update", h.decodeUpdate)
	decode.POST("/chunks", h.decodeChunks)
	decode.POST("/gethash", h.decodeGetHash)
	decode.POST("/keys", h.decodeKeys)
}

func (h *HTTP) decodeUpdate(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	update, err := protocol.ParseUpdate(body, h.decode)
	h.respond(c, update, err)
}

// decodeChunks takes the list name and MAC the chunk data was redirected
// with as the list and mac query parameters.
func (h *HTTP) decodeChunks(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	set, err := protocol.ParseChunks(body, c.Query("list"), c.Query("mac"), h.decode)
	h.respond(c, set, err)
}

func (h *HTTP) decodeGetHash(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	resp, err := protocol.ParseGetHash(body, h.decode)
	h.respond(c, resp, err)
}

func (h *HTTP) decodeKeys(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	keys, err := protocol.ParseKeys(body)
	h.respond(c, keys, err)
}

// getLists reports the chunk ranges held for each list named by a list query
// parameter, or for every known list.
func (h *HTTP) getLists(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No store configured"})
		return
	}

	names := c.QueryArray("list")
	if len(names) == 0 {
		names = h.lists.Names()
	}

	reqs, err := h.store.ListRequests(c.Request.Context(), names)
	if err != nil {
		h.log.Error("Failed to read lists", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	states := make([]listState, 0, len(reqs))
	for _, req := range reqs {
		states = append(states, listState{
			Name: req.Name,
			Adds: ranges.Format(ranges.FromNumbers(req.Adds)),
			Subs: ranges.Format(ranges.FromNumbers(req.Subs)),
		})
	}

	c.JSON(http.StatusOK, states)
}

func (h *HTTP) respond(c *gin.Context, value interface{}, err error) {
	if err != nil {
		class := protocol.Classify(err)
		h.log.Debug("Failed to decode", zap.String("class", string(class)), zap.Error(err))

		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"class": class,
		})
		return
	}

	c.JSON(http.StatusOK, value)
}
