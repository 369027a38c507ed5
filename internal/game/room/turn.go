package room

import (
	"fmt"

	"github.com/palemoky/card-duel/internal/game/action"
)

// applyEndTurn 回合推进状态机
//
// 回合权移交给下一位，上一位的完成回合数加一；轮回到先手
// 即进入新一轮。新的当前玩家抽一张牌（牌库空是无操作，不是
// 错误），法力上限加一但只在低于 10 时生效——手动拉过 10 的
// 上限永远不会被自动回调，随后法力补满，章节进度推进。
func (r *Room) applyEndTurn(p *Player, a action.EndTurn) Result {
	if r.Match.Phase != PhasePlaying || len(r.Players) == 0 {
		return silent()
	}

	prev := r.Players[r.Match.CurrentPlayer]
	prev.TurnsCompleted++

	r.Match.CurrentPlayer = (r.Match.CurrentPlayer + 1) % len(r.Players)
	if r.Match.CurrentPlayer == r.Match.FirstPlayer {
		r.Match.Round++
	}

	next := r.Players[r.Match.CurrentPlayer]
	next.draw(1)

	if next.MaxMana < manaCap {
		next.MaxMana++
	}
	next.Mana = next.MaxMana

	next.ChapterProgress++
	if next.ChapterProgress >= next.MaxChapterProgress {
		next.ChapterProgress = 0
		if next.ChapterTokens < chapterTokenCap {
			next.ChapterTokens++
		}
	}

	msg := fmt.Sprintf("%s 结束了回合，轮到 %s", p.Username, next.Username)
	return r.success(p, a.ActionTag(), msg, nil)
}
