package bot

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
    "github.com/xaenox/recycle-bot/internal/imageinput"
    "github.com/xaenox/recycle-bot/internal/models"
    "github.com/xaenox/recycle-bot/internal/services"
    "go.uber.org/zap"
)

const historyLimit = 5

type Bot struct {
    api        *tgbotapi.BotAPI
    analyses   *services.AnalysisService
    httpClient *http.Client
    logger     *zap.Logger
}

func New(token string, analyses *services.AnalysisService, logger *zap.Logger) (*Bot, error) {
    api, err := tgbotapi.NewBotAPI(token)
    if err != nil {
        return nil, fmt.Errorf("failed to create bot: %w", err)
    }

    return &Bot{
        api:        api,
        analyses:   analyses,
        httpClient: &http.Client{Timeout: 30 * time.Second},
        logger:     logger,
    }, nil
}

// Start polls for updates until ctx is cancelled. Each message is handled in
// its own goroutine.
func (b *Bot) Start(ctx context.Context) error {
    u := tgbotapi.NewUpdate(0)
    u.Timeout = 60

    updates := b.api.GetUpdatesChan(u)
    b.logger.Info("Bot started", zap.String("username", b.api.Self.UserName))

    for {
        select {
        case <-ctx.Done():
            b.api.StopReceivingUpdates()
            return nil
        case update, ok := <-updates:
            if !ok {
                return nil
            }
            if update.Message == nil {
                continue
            }
            go b.handleMessage(ctx, update.Message)
        }
    }
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
    if message.From == nil {
        return
    }

    if message.IsCommand() {
        b.handleCommand(ctx, message)
        return
    }

    switch {
    case len(message.Photo) > 0:
        // sizes are ordered smallest first
        photo := message.Photo[len(message.Photo)-1]
        b.handleImage(ctx, message, photo.FileID, int64(photo.FileSize), models.TelegramPhoto)
    case message.Document != nil && strings.HasPrefix(message.Document.MimeType, "image/"):
        b.handleImage(ctx, message, message.Document.FileID, int64(message.Document.FileSize), models.TelegramDocument)
    case message.Document != nil:
        b.sendErrorMessage(message.Chat.ID, "Silakan pilih file gambar yang valid.")
    case strings.TrimSpace(message.Text) != "":
        b.handleText(ctx, message)
    }
}

func (b *Bot) handleImage(ctx context.Context, message *tgbotapi.Message, fileID string, fileSize int64, source models.Source) {
    if fileSize > b.analyses.MaxImageBytes() {
        b.sendErrorMessage(message.Chat.ID, tooLargeText(b.analyses.MaxImageBytes()))
        return
    }

    b.sendChatAction(message.Chat.ID, tgbotapi.ChatTyping)

    data, err := b.downloadFile(ctx, fileID)
    if err != nil {
        b.logger.Error("Failed to download file",
            zap.Error(err),
            zap.String("file_id", fileID),
            zap.Int64("user_id", message.From.ID))
        b.sendErrorMessage(message.Chat.ID, "Maaf, gambar tidak dapat diunduh. Silakan coba lagi.")
        return
    }

    analysis, err := b.analyses.AnalyzeImage(ctx, services.ImageRequest{
        UserID:  message.From.ID,
        Source:  source,
        Image:   data,
        Caption: message.Caption,
    })
    if err != nil {
        b.logger.Error("Failed to analyze image",
            zap.Error(err),
            zap.Int64("user_id", message.From.ID))
        b.sendErrorMessage(message.Chat.ID, imageErrorText(err, b.analyses.MaxImageBytes()))
        return
    }

    b.sendAnalysis(message.Chat.ID, message.MessageID, analysis)
}

func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
    analysis, err := b.analyses.AnalyzeText(ctx, message.From.ID, message.Text)
    if err != nil {
        b.logger.Error("Failed to analyze text",
            zap.Error(err),
            zap.Int64("user_id", message.From.ID))
        b.sendErrorMessage(message.Chat.ID, "Maaf, terjadi kesalahan. Silakan coba lagi.")
        return
    }
    b.sendAnalysis(message.Chat.ID, message.MessageID, analysis)
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
    fileURL, err := b.api.GetFileDirectURL(fileID)
    if err != nil {
        return nil, fmt.Errorf("get file url: %w", err)
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
    if err != nil {
        return nil, fmt.Errorf("build request: %w", err)
    }
    resp, err := b.httpClient.Do(req)
    if err != nil {
        return nil, fmt.Errorf("download: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        return nil, fmt.Errorf("download: unexpected status %s", resp.Status)
    }

    // Read validates size and type; the service validates again
    data, _, err := imageinput.Read(resp.Body, b.analyses.MaxImageBytes())
    return data, err
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
    switch message.Command() {
    case "start":
        b.sendMessage(message.Chat.ID, welcomeText)
    case "help":
        b.sendMessage(message.Chat.ID, helpText)
    case "history":
        b.handleHistory(ctx, message)
    case "stats":
        b.handleStats(ctx, message)
    default:
        b.sendMessage(message.Chat.ID, "Perintah tidak dikenal. Gunakan /help untuk melihat daftar perintah.")
    }
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
    analyses, err := b.analyses.History(ctx, message.From.ID, historyLimit, 0)
    if err != nil {
        b.logger.Error("Failed to get user analyses",
            zap.Error(err),
            zap.Int64("user_id", message.From.ID))
        b.sendErrorMessage(message.Chat.ID, "Maaf, riwayat tidak dapat diambil.")
        return
    }

    if len(analyses) == 0 {
        b.sendMessage(message.Chat.ID, "Belum ada gambar yang dianalisis.")
        return
    }

    b.sendMarkdown(message.Chat.ID, 0, formatHistory(analyses))
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) {
    stats, err := b.analyses.Stats(ctx, message.From.ID)
    if err != nil {
        b.logger.Error("Failed to get user stats",
            zap.Error(err),
            zap.Int64("user_id", message.From.ID))
        b.sendErrorMessage(message.Chat.ID, "Maaf, statistik tidak dapat diambil.")
        return
    }

    b.sendMarkdown(message.Chat.ID, 0, formatStats(stats))
}

func (b *Bot) sendAnalysis(chatID int64, replyToID int, analysis *models.Analysis) {
    b.sendMarkdown(chatID, replyToID, formatAnalysis(analysis))
}

func (b *Bot) sendMarkdown(chatID int64, replyToID int, text string) {
    msg := tgbotapi.NewMessage(chatID, text)
    msg.ParseMode = tgbotapi.ModeMarkdownV2
    msg.ReplyToMessageID = replyToID

    if _, err := b.api.Send(msg); err != nil {
        b.logger.Error("Failed to send message",
            zap.Error(err),
            zap.Int64("chat_id", chatID))
    }
}

func (b *Bot) sendMessage(chatID int64, text string) {
    msg := tgbotapi.NewMessage(chatID, text)
    if _, err := b.api.Send(msg); err != nil {
        b.logger.Error("Failed to send message",
            zap.Error(err),
            zap.Int64("chat_id", chatID))
    }
}

func (b *Bot) sendChatAction(chatID int64, action string) {
    if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
        b.logger.Debug("Failed to send chat action", zap.Error(err))
    }
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
    msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
    if _, err := b.api.Send(msg); err != nil {
        b.logger.Error("Failed to send error message",
            zap.Error(err),
            zap.Int64("chat_id", chatID))
    }
}

func imageErrorText(err error, limit int64) string {
    switch {
    case errors.Is(err, imageinput.ErrTooLarge):
        return tooLargeText(limit)
    case errors.Is(err, imageinput.ErrNotImage), errors.Is(err, imageinput.ErrEmptyImage):
        return "Silakan pilih file gambar yang valid."
    case errors.Is(err, services.ErrClassification):
        return "Gambar tidak dapat dianalisis saat ini. Tambahkan keterangan pada foto atau coba lagi nanti."
    default:
        return "Maaf, terjadi kesalahan. Silakan coba lagi."
    }
}

func tooLargeText(limit int64) string {
    return fmt.Sprintf("Ukuran file terlalu besar. Silakan pilih gambar di bawah %dMB.", limit/(1024*1024))
}
