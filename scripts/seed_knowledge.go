// Command seed_knowledge fills the knowledge base with the curated FAQ
// entries. It is idempotent: existing questions are updated in place.
//
// Run it once against a fresh database:
//
//	go run ./scripts/seed_knowledge.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"agribuddy/internal/config"
	"agribuddy/internal/pkg/logger"
	"agribuddy/internal/pkg/postgres"
)

type faqEntry struct {
	question string
	answer   string
	keywords string
}

var faqEntries = []faqEntry{
	{
		question: "Bagaimana cara mengatasi hama wereng pada padi?",
		answer: "Untuk mengatasi hama wereng pada padi: 1. Gunakan varietas padi tahan wereng seperti Inpari 13. " +
			"2. Atur jarak tanam dengan sistem jajar legowo agar sirkulasi udara baik. " +
			"3. Hindari pemupukan nitrogen berlebihan. " +
			"4. Jika serangan berat, gunakan insektisida berbahan aktif buprofezin atau pymetrozine sesuai dosis anjuran.",
		keywords: "hama,wereng,padi",
	},
	{
		question: "Apa pupuk yang baik untuk tanaman cabai?",
		answer: "Pupuk untuk tanaman cabai: 1. Pupuk dasar: kompos atau pupuk kandang matang 15-20 ton per hektar. " +
			"2. Fase vegetatif: NPK 16-16-16 dengan dosis 200-300 kg per hektar. " +
			"3. Fase pembungaan dan pembuahan: tambahkan KNO3 dan kalsium untuk mencegah busuk ujung buah.",
		keywords: "pupuk,cabai,tanaman",
	},
	{
		question: "Bagaimana cara menanam jagung yang benar?",
		answer: "Cara menanam jagung: 1. Olah tanah sedalam 20-30 cm dan beri pupuk kandang. " +
			"2. Tanam benih 2 biji per lubang dengan jarak 75x25 cm. " +
			"3. Lakukan penjarangan pada umur 2 minggu, sisakan 1 tanaman terbaik. " +
			"4. Pupuk susulan urea pada umur 3-4 minggu dan 6-7 minggu.",
		keywords: "menanam,jagung,benih",
	},
	{
		question: "Kapan waktu yang tepat untuk menyiram tanaman?",
		answer: "Waktu terbaik menyiram tanaman adalah pagi hari sebelum jam 9 atau sore hari setelah jam 4. " +
			"Hindari menyiram di siang hari karena air cepat menguap dan dapat membakar daun. " +
			"Siram di bagian pangkal tanaman, bukan daunnya, untuk mencegah penyakit jamur.",
		keywords: "menyiram,tanaman,waktu",
	},
	{
		question: "Bagaimana cara mengatasi penyakit busuk daun pada tomat?",
		answer: "Mengatasi busuk daun (late blight) pada tomat: 1. Cabut dan musnahkan tanaman yang terinfeksi berat. " +
			"2. Perbaiki drainase dan kurangi kelembapan di sekitar tanaman. " +
			"3. Semprot fungisida berbahan aktif mankozeb atau klorotalonil secara bergantian. " +
			"4. Musim tanam berikutnya gunakan rotasi tanaman dengan keluarga non-Solanaceae.",
		keywords: "penyakit,busuk,daun,tomat",
	},
}

func main() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.agribuddy")

	viper.SetEnvPrefix("AGRIBUDDY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.SetDefault("postgres.dsn", "postgres://postgres@localhost:5432/agribuddy?sslmode=disable")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")

	_ = viper.ReadInConfig()

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	pg, err := postgres.New(&cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.Migrate(ctx, pg.DB()); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	db := pg.DB()
	inserted, updated := 0, 0
	for _, e := range faqEntries {
		res, err := db.ExecContext(ctx,
			`UPDATE knowledge_entries SET answer = $2, keywords = $3 WHERE question = $1`,
			e.question, e.answer, e.keywords)
		if err != nil {
			log.Fatal().Err(err).Str("question", e.question).Msg("failed to update entry")
		}
		if n, _ := res.RowsAffected(); n > 0 {
			updated++
			continue
		}

		if _, err := db.ExecContext(ctx,
			`INSERT INTO knowledge_entries (question, answer, keywords) VALUES ($1, $2, $3)`,
			e.question, e.answer, e.keywords); err != nil {
			log.Fatal().Err(err).Str("question", e.question).Msg("failed to insert entry")
		}
		inserted++
	}

	log.Info().Int("inserted", inserted).Int("updated", updated).Msg("knowledge base seeded")
}
