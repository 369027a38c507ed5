//go:build !production

package room

import (
	"fmt"

	"github.com/palemoky/card-duel/internal/game/card"
	"github.com/palemoky/card-duel/internal/network/protocol"
)

// fakeConn 测试用连接，记录所有下行消息
type fakeConn struct {
	id   string
	sent []*protocol.Message
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (f *fakeConn) ConnID() string { return f.id }

func (f *fakeConn) Send(msg *protocol.Message) {
	f.sent = append(f.sent, msg)
}

// testDeck 生成 n 张按序命名的测试牌
func testDeck(n int) []*card.Card {
	cards := make([]*card.Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, card.New(fmt.Sprintf("card-%02d", i), 1, 1, 1, "", ""))
	}
	return cards
}
