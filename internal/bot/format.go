package bot

import (
	"fmt"
	"strings"

	"github.com/xaenox/recycle-bot/internal/models"
)

const maxShownPredictions = 5

const welcomeText = `Selamat datang di Recycling Advisor! 🌱
Kirim foto sebuah barang dan saya akan mengidentifikasinya serta memberi saran cara membuangnya.

Gunakan /help untuk melihat semua perintah.`

const helpText = `Cara menggunakan:
1. Kirim foto barang (maksimal 5MB)
2. AI akan mengidentifikasi jenis barang tersebut
3. Dapatkan hasil klasifikasi dan saran pembuangan

Anda juga bisa mengetik nama barang, misalnya "botol plastik".

Perintah:
/start - Mulai
/help - Tampilkan bantuan ini
/history - Lima analisis terakhir
/stats - Ringkasan jenis sampah Anda`

// escapeMarkdown escapes special characters for MarkdownV2
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

func formatAnalysis(a *models.Analysis) string {
	var sb strings.Builder

	if len(a.Predictions) > 0 {
		sb.WriteString("*🔍 Hasil Deteksi AI*\n")
		for i, p := range a.Predictions {
			if i == maxShownPredictions {
				break
			}
			line := escapeMarkdown(p.Label) + " \\- " + escapeMarkdown(formatPercent(p.Probability))
			if i == 0 {
				line = "*" + line + "*"
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("*♻️ Saran Pembuangan:*\n")
	sb.WriteString(escapeMarkdown(a.Recommendation) + "\n\n")
	sb.WriteString("*🗑️ Cara Membuang:*\n")
	sb.WriteString(escapeMarkdown(a.DisposalInstruction))
	return sb.String()
}

func categoryTags(a *models.Analysis) []string {
	var tags []string
	if a.Categories.Organic {
		tags = append(tags, "#organik")
	}
	if a.Categories.InorganicRecyclable {
		tags = append(tags, "#daur_ulang")
	}
	if a.Categories.InorganicNonRecyclable {
		tags = append(tags, "#residu")
	}
	if len(tags) == 0 {
		tags = append(tags, "#tidak_dikenali")
	}
	return tags
}

func formatHistory(analyses []*models.Analysis) string {
	var sb strings.Builder
	sb.WriteString("*Analisis terakhir Anda:*\n\n")
	for _, a := range analyses {
		label := a.TopLabel()
		if label == "" {
			label = "tidak dikenali"
		}
		sb.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(label)))
		sb.WriteString(fmt.Sprintf("_%s_\n", escapeMarkdown(a.CreatedAt.Format("02 Jan 2006 15:04"))))

		tags := categoryTags(a)
		for i, tag := range tags {
			tags[i] = escapeMarkdown(tag)
		}
		sb.WriteString(strings.Join(tags, " ") + "\n\n")
	}
	return sb.String()
}

func formatStats(s *models.UserStats) string {
	if s.Total == 0 {
		return escapeMarkdown("Belum ada gambar yang dianalisis.")
	}
	lines := []string{
		"*Statistik Anda*",
		escapeMarkdown(fmt.Sprintf("Total analisis: %d", s.Total)),
		escapeMarkdown(fmt.Sprintf("Organik: %d", s.Organic)),
		escapeMarkdown(fmt.Sprintf("Anorganik daur ulang: %d", s.InorganicRecyclable)),
		escapeMarkdown(fmt.Sprintf("Tidak dapat didaur ulang: %d", s.InorganicNonRecyclable)),
		escapeMarkdown(fmt.Sprintf("Tidak dikenali: %d", s.Unrecognized)),
	}
	return strings.Join(lines, "\n")
}
