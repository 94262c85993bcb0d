package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/config"
	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
	"github.com/vEnhance/atheweb/pkg/discord"
)

// ── 通知模块业务错误 ──

var ErrNoStandingsWebhook = errors.New("standings webhook url is not configured")

// 各学院在 Discord 服务器中的自定义表情
var houseEmojis = map[string]string{
	model.HouseOwl:      "<:owlheart:1307684456982904943>",
	model.HouseBlob:     "<:blobheart:822453188853760071>",
	model.HouseRedPanda: "<:redpandaheart:1227043341686804510>",
	model.HouseCat:      "<:catlove:1301819346888429618>",
	model.HouseBunny:    "<:bunnylove:1324915395035005089>",
}

// 提醒窗口：开课前 24 小时内
const reminderWindow = 24 * time.Hour

// NotifyService 对外推送业务接口（Discord Webhook），由定时任务触发
type NotifyService interface {
	// SendMeetingReminders 给窗口内未提醒、且课程开启提醒的场次逐个发送提醒；
	// 发送成功后标记 reminder_sent，避免重复提醒
	SendMeetingReminders(ctx context.Context) (*dto.ReminderRunResponse, error)
	// PostStandings 向公共频道播报当前学期的学院积分榜；榜单冻结时跳过
	PostStandings(ctx context.Context) (*dto.StandingsPostResponse, error)
}

type notifyService struct {
	cfg     *config.Config
	repo    *repository.Repository
	webhook *discord.Client
	logger  *zap.Logger
}

// NewNotifyService 创建 NotifyService 实例
func NewNotifyService(cfg *config.Config, repo *repository.Repository, webhook *discord.Client, logger *zap.Logger) NotifyService {
	return &notifyService{cfg: cfg, repo: repo, webhook: webhook, logger: logger}
}

// ────────────────────── SendMeetingReminders ──────────────────────

func (s *notifyService) SendMeetingReminders(ctx context.Context) (*dto.ReminderRunResponse, error) {
	now := time.Now()
	meetings, err := s.repo.Course.ListPendingReminders(ctx, now, now.Add(reminderWindow))
	if err != nil {
		s.logger.Error("查询待提醒场次失败", zap.Error(err))
		return nil, err
	}

	result := &dto.ReminderRunResponse{Details: make([]string, 0, len(meetings))}
	for i := range meetings {
		meeting := &meetings[i]
		course := meeting.Course
		if course == nil {
			continue
		}
		if course.DiscordWebhook == "" {
			result.Skipped++
			result.Details = append(result.Details,
				fmt.Sprintf("skipped %s: no webhook configured", course.Name))
			continue
		}

		if err := s.webhook.Post(ctx, course.DiscordWebhook, s.reminderMessage(meeting, course)); err != nil {
			s.logger.Error("发送场次提醒失败",
				zap.String("meeting_id", meeting.MeetingID),
				zap.String("course", course.Name),
				zap.Error(err))
			result.Failed++
			result.Details = append(result.Details,
				fmt.Sprintf("failed %s: %v", course.Name, err))
			continue
		}

		if err := s.repo.Course.MarkReminderSent(ctx, meeting.MeetingID); err != nil {
			s.logger.Error("标记提醒状态失败", zap.String("meeting_id", meeting.MeetingID), zap.Error(err))
			return nil, err
		}
		result.Sent++
		result.Details = append(result.Details, fmt.Sprintf("sent %s", course.Name))
	}

	s.logger.Info("场次提醒发送完毕",
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

// reminderMessage 拼装场次提醒文本；时间用 Discord 时间戳标签渲染为读者本地时区
func (s *notifyService) reminderMessage(meeting *model.CourseMeeting, course *model.Course) string {
	mention := "@here"
	if course.DiscordRoleID != "" {
		mention = fmt.Sprintf("<@&%s>", course.DiscordRoleID)
	}
	kind := "class"
	if course.IsClub {
		kind = "club"
	}
	unix := meeting.StartTime.Unix()

	parts := []string{
		fmt.Sprintf("%s Reminder: the %s **%s** is meeting soon!", mention, kind, course.Name),
		fmt.Sprintf("Time: <t:%d:F> --- <t:%d:R>", unix, unix),
	}
	if meeting.Title != "" {
		parts = append(parts, fmt.Sprintf("Topic: %s", meeting.Title))
	}
	if course.ZoomMeetingLink != "" {
		parts = append(parts, fmt.Sprintf("Zoom link: %s", course.ZoomMeetingLink))
	}
	parts = append(parts, fmt.Sprintf("Full schedule: %s/courses/%s", s.cfg.Server.BaseURL, course.CourseID))
	return strings.Join(parts, "\n")
}

// ────────────────────── PostStandings ──────────────────────

func (s *notifyService) PostStandings(ctx context.Context) (*dto.StandingsPostResponse, error) {
	if s.cfg.Discord.StandingsWebhookURL == "" {
		return nil, ErrNoStandingsWebhook
	}

	semester, err := currentSemester(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	// 冻结后榜单不再对外播报
	if semester.HousePointsFreezeDate != nil {
		s.logger.Warn("榜单已冻结，跳过播报",
			zap.String("semester", semester.Slug),
			zap.Time("frozen_at", *semester.HousePointsFreezeDate))
		return &dto.StandingsPostResponse{Semester: semester.Name, Posted: false}, nil
	}

	totals, err := s.repo.Award.HouseTotals(ctx, semester.SemesterID, nil)
	if err != nil {
		s.logger.Error("统计学院总分失败", zap.Error(err))
		return nil, err
	}
	scores := make(map[string]int, len(model.AllHouses))
	for _, row := range totals {
		if row.House == "" {
			continue
		}
		scores[row.House] += row.Points
	}
	for _, house := range model.AllHouses {
		if _, ok := scores[house]; !ok {
			scores[house] = 0
		}
	}

	type standing struct {
		house  string
		points int
	}
	sorted := make([]standing, 0, len(scores))
	for house, points := range scores {
		sorted = append(sorted, standing{house: house, points: points})
	}
	// 分数降序，同分按学院名，保证播报顺序稳定
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].points != sorted[j].points {
			return sorted[i].points > sorted[j].points
		}
		return sorted[i].house < sorted[j].house
	})

	mention := "@here"
	if s.cfg.Discord.StandingsRoleID != "" {
		mention = fmt.Sprintf("<@&%s>", s.cfg.Discord.StandingsRoleID)
	}
	lines := []string{fmt.Sprintf("%s Current standings!", mention)}
	for i, st := range sorted {
		lines = append(lines, fmt.Sprintf("%d. %s %d points", i+1, houseEmojis[st.house], st.points))
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Generated at <t:%d:F>", time.Now().Unix()))
	lines = append(lines, fmt.Sprintf("_Live scoreboard_: %s/house-points/", s.cfg.Server.BaseURL))
	lines = append(lines, fmt.Sprintf("_Your awards_: %s/house-points/awards/my/", s.cfg.Server.BaseURL))

	if err := s.webhook.Post(ctx, s.cfg.Discord.StandingsWebhookURL, strings.Join(lines, "\n")); err != nil {
		s.logger.Error("发送榜单播报失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("榜单播报已发送", zap.String("semester", semester.Slug))
	return &dto.StandingsPostResponse{Semester: semester.Name, Posted: true}, nil
}
