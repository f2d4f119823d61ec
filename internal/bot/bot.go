// Package bot maps inbound group commands to handlers. Every command resolves
// to either a formatted reply or an apologetic failure reply; handler errors
// never escape to the caller.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/TeAnli/acm-bot/internal/cache"
	"github.com/TeAnli/acm-bot/internal/contest"
	"github.com/TeAnli/acm-bot/internal/onebot"
	"github.com/TeAnli/acm-bot/internal/platform/codeforces"
	"github.com/TeAnli/acm-bot/internal/platform/scpc"
	"github.com/TeAnli/acm-bot/internal/store"
)

// User-facing replies.
const (
	replyCFUnavailable   = "暂时无法获取 Codeforces 比赛信息, 请稍后重试"
	replySCPCUnavailable = "暂时无法获取 SCPC 比赛信息, 请稍后重试"
	replyNoCF            = "近期暂无即将开始或进行中的 Codeforces 比赛"
	replyNoSCPC          = "近期暂无即将开始或进行中的 SCPC 比赛"
	replyNotAdmin        = "只有群主或管理员才能操作比赛提醒"
	replyRoleUnavailable = "暂时无法确认您的群权限, 请稍后重试"
	replyWatchOn         = "本群已开启比赛提醒"
	replyWatchOff        = "本群已关闭比赛提醒"
	replyWatchFailed     = "操作失败, 请稍后重试"
)

// CodeforcesAPI is the subset of the Codeforces client the bot uses.
type CodeforcesAPI interface {
	ActiveContests(ctx context.Context) ([]contest.Classified, error)
	UserRating(ctx context.Context, handle string) ([]codeforces.RatingChange, error)
}

// SCPCAPI is the subset of the SCPC client the bot uses.
type SCPCAPI interface {
	ActiveContests(ctx context.Context) ([]contest.Classified, error)
	UserInfo(ctx context.Context, username string) (*scpc.User, error)
	WeekRank(ctx context.Context) ([]scpc.WeekRankEntry, error)
	UpdatedProblems(ctx context.Context) ([]scpc.UpdatedProblem, error)
}

// ChatAPI is the chat-platform collaborator.
type ChatAPI interface {
	SendGroupText(ctx context.Context, groupID int64, text string) error
	SendGroupImage(ctx context.Context, groupID int64, path string) error
	MemberRole(ctx context.Context, groupID, userID int64) (onebot.Role, error)
}

// Bot routes group commands to handlers.
type Bot struct {
	cf        CodeforcesAPI
	scpc      SCPCAPI
	chat      ChatAPI
	groups    store.Store
	cache     *cache.Cache
	assetsDir string
	logger    *slog.Logger
}

func New(cf CodeforcesAPI, sc SCPCAPI, chat ChatAPI, groups store.Store, replies *cache.Cache, assetsDir string, logger *slog.Logger) *Bot {
	return &Bot{
		cf:        cf,
		scpc:      sc,
		chat:      chat,
		groups:    groups,
		cache:     replies,
		assetsDir: assetsDir,
		logger:    logger,
	}
}

// HandleEvent dispatches a single inbound event. Non-group messages and
// unknown commands are ignored.
func (b *Bot) HandleEvent(ctx context.Context, ev onebot.Event) {
	if !ev.IsGroupMessage() {
		return
	}

	cmd, arg, _ := strings.Cut(strings.TrimSpace(ev.RawMessage), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "cf比赛":
		b.replyText(ctx, ev.GroupID, b.codeforcesContests(ctx))
	case "scpc比赛":
		b.replyText(ctx, ev.GroupID, b.scpcContests(ctx))
	case "cf积分":
		if arg == "" {
			b.replyText(ctx, ev.GroupID, "用法: cf积分 <handle>")
			return
		}
		b.replyText(ctx, ev.GroupID, b.codeforcesRating(ctx, arg))
	case "scpc信息":
		if arg == "" {
			b.replyText(ctx, ev.GroupID, "用法: scpc信息 <用户名>")
			return
		}
		b.replyText(ctx, ev.GroupID, b.scpcUserInfo(ctx, arg))
	case "scpc周榜":
		b.replyText(ctx, ev.GroupID, b.scpcWeekRank(ctx))
	case "scpc新题":
		b.replyText(ctx, ev.GroupID, b.scpcUpdatedProblems(ctx))
	case "开启比赛提醒":
		b.setWatch(ctx, ev, true)
	case "关闭比赛提醒":
		b.setWatch(ctx, ev, false)
	case "来个男神":
		b.randomImage(ctx, ev.GroupID)
	}
}

// replyText sends a reply, logging failures instead of propagating them.
func (b *Bot) replyText(ctx context.Context, groupID int64, text string) {
	if err := b.chat.SendGroupText(ctx, groupID, text); err != nil {
		b.logger.Warn("send group message failed", "group_id", groupID, "error", err)
	}
}

// codeforcesContests renders the contest listing. Replies are cached, so
// the remaining-time figures can lag real time by up to cache.TTLContests;
// at the hour-granularity display that skew is invisible.
func (b *Bot) codeforcesContests(ctx context.Context) string {
	if text, ok := b.cache.Get("cf_contests"); ok {
		return text
	}
	items, err := b.cf.ActiveContests(ctx)
	if err != nil {
		b.logger.Warn("fetch codeforces contests failed", "error", err)
		return replyCFUnavailable
	}
	if len(items) == 0 {
		return replyNoCF
	}
	text := strings.Join(contest.Render(items, true), "\n\n")
	b.cache.Set("cf_contests", text, cache.TTLContests)
	return text
}

func (b *Bot) scpcContests(ctx context.Context) string {
	if text, ok := b.cache.Get("scpc_contests"); ok {
		return text
	}
	items, err := b.scpc.ActiveContests(ctx)
	if err != nil {
		b.logger.Warn("fetch scpc contests failed", "error", err)
		return replySCPCUnavailable
	}
	if len(items) == 0 {
		return replyNoSCPC
	}
	text := strings.Join(contest.Render(items, false), "\n\n")
	b.cache.Set("scpc_contests", text, cache.TTLContests)
	return text
}

func (b *Bot) codeforcesRating(ctx context.Context, handle string) string {
	changes, err := b.cf.UserRating(ctx, handle)
	if err != nil {
		b.logger.Warn("fetch codeforces rating failed", "handle", handle, "error", err)
		return replyCFUnavailable
	}
	if len(changes) == 0 {
		return fmt.Sprintf("%s 还没有参加过 Rated 比赛", handle)
	}
	latest := changes[len(changes)-1]
	delta := latest.NewRating - latest.OldRating
	sign := ""
	if delta >= 0 {
		sign = "+"
	}
	return fmt.Sprintf(
		"Codeforces 积分:\n用户: %s\n当前积分: %d (%s%d)\n最近比赛: %s\n名次: %d",
		latest.Handle, latest.NewRating, sign, delta, latest.ContestName, latest.Rank,
	)
}

func (b *Bot) scpcUserInfo(ctx context.Context, username string) string {
	user, err := b.scpc.UserInfo(ctx, username)
	if err != nil {
		b.logger.Warn("fetch scpc user failed", "username", username, "error", err)
		return replySCPCUnavailable
	}
	return fmt.Sprintf(
		"SCPC 个人信息：\n昵称: %s\n签名: %s\n提交数: %d\nAC数: %d\n题目通过率: %.2f%%",
		user.Nickname, user.Signature, user.Total, user.Solved, user.AcceptRatio(),
	)
}

func (b *Bot) scpcWeekRank(ctx context.Context) string {
	if text, ok := b.cache.Get("scpc_week_rank"); ok {
		return text
	}
	entries, err := b.scpc.WeekRank(ctx)
	if err != nil {
		b.logger.Warn("fetch scpc week rank failed", "error", err)
		return replySCPCUnavailable
	}
	if len(entries) == 0 {
		return "最近一周暂无过题记录"
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "最近一周过题榜单:")
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. %s  AC: %d", i+1, e.Username, e.Accepted))
	}
	text := strings.Join(lines, "\n")
	b.cache.Set("scpc_week_rank", text, cache.TTLRank)
	return text
}

func (b *Bot) scpcUpdatedProblems(ctx context.Context) string {
	if text, ok := b.cache.Get("scpc_problems"); ok {
		return text
	}
	problems, err := b.scpc.UpdatedProblems(ctx)
	if err != nil {
		b.logger.Warn("fetch scpc problems failed", "error", err)
		return replySCPCUnavailable
	}
	if len(problems) == 0 {
		return "近期暂无更新题目"
	}
	lines := make([]string, 0, len(problems)+1)
	lines = append(lines, "近期更新题目:")
	for _, p := range problems {
		line := fmt.Sprintf("[%s] %s", p.ProblemID, p.Title)
		if p.URL != "" {
			line += "\n" + p.URL
		}
		lines = append(lines, line)
	}
	text := strings.Join(lines, "\n")
	b.cache.Set("scpc_problems", text, cache.TTLProblems)
	return text
}

// setWatch toggles contest alerts for the group. Only the group owner or an
// admin may do this; a failed role lookup refuses the command.
func (b *Bot) setWatch(ctx context.Context, ev onebot.Event, enable bool) {
	role, err := b.chat.MemberRole(ctx, ev.GroupID, ev.UserID)
	if err != nil {
		b.logger.Warn("member role lookup failed",
			"group_id", ev.GroupID, "user_id", ev.UserID, "error", err)
		b.replyText(ctx, ev.GroupID, replyRoleUnavailable)
		return
	}
	if !role.IsElevated() {
		b.replyText(ctx, ev.GroupID, replyNotAdmin)
		return
	}

	if enable {
		err = b.groups.Enable(ctx, ev.GroupID)
	} else {
		err = b.groups.Disable(ctx, ev.GroupID)
	}
	if err != nil {
		b.logger.Error("update watch subscription failed",
			"group_id", ev.GroupID, "enable", enable, "error", err)
		b.replyText(ctx, ev.GroupID, replyWatchFailed)
		return
	}

	b.logger.Info("watch subscription changed", "group_id", ev.GroupID, "enable", enable)
	if enable {
		b.replyText(ctx, ev.GroupID, replyWatchOn)
	} else {
		b.replyText(ctx, ev.GroupID, replyWatchOff)
	}
}

func (b *Bot) randomImage(ctx context.Context, groupID int64) {
	n := rand.Intn(5) + 1
	path := filepath.Join(b.assetsDir, fmt.Sprintf("image%d.png", n))
	if err := b.chat.SendGroupImage(ctx, groupID, path); err != nil {
		b.logger.Warn("send group image failed", "group_id", groupID, "error", err)
	}
}
