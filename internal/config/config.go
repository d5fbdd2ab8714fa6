package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath       string
	DataDir      string
	OutputDir    string
	ArtifactPath string

	POWOBaseURL       string
	POWORateLimitRPS  int
	POWOTimeoutMs     int
	POWORetryAttempts int

	SynonymScoreThreshold float64

	HTTPUserAgent string

	QLDBaseURL     string
	NSWListURL     string
	TASTableURL    string
	WeedScanURL    string
	WONSWikiURL    string
	NTPDFURL       string
	LucidKeyURLs   []string
	LucidWaitSec   int
	WACSVFilename  string
	BCCCSVFilename string
	VICPDFFilename string
	SAPDFFilename  string
	NTPDFFilename  string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:       getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		DataDir:      getEnv("DATA_DIR", filepath.Join(cwd, "data_sources")),
		OutputDir:    getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		ArtifactPath: getEnv("ARTIFACT_PATH", filepath.Join(cwd, "out", "accepted_species.json")),

		POWOBaseURL:       getEnv("POWO_API_BASE_URL", "https://powo.science.kew.org/api/2"),
		POWORateLimitRPS:  getEnvInt("POWO_RATE_LIMIT_RPS", 5),
		POWOTimeoutMs:     getEnvInt("POWO_TIMEOUT_MS", 30000),
		POWORetryAttempts: getEnvInt("POWO_RETRY_ATTEMPTS", 5),

		SynonymScoreThreshold: getEnvFloat("SYNONYM_SCORE_THRESHOLD", 0.8),

		HTTPUserAgent: getEnv("HTTP_USER_AGENT", "Mozilla/5.0"),

		QLDBaseURL:  getEnv("QLD_BASE_URL", "https://www.business.qld.gov.au/industries/farms-fishing-forestry/agriculture/biosecurity/plants/invasive"),
		NSWListURL:  getEnv("NSW_LIST_URL", "https://weeds.dpi.nsw.gov.au/WeedListPublics/Browse?SNOrder=False"),
		TASTableURL: getEnv("TAS_TABLE_URL", "https://nre.tas.gov.au/invasive-species/weeds/weeds-index/declared-weeds-index"),
		WeedScanURL: getEnv("WEEDSCAN_URL", "https://weedscan.org.au/Weeds?handler=QueryPartial"),
		WONSWikiURL: getEnv("WONS_WIKI_URL", "https://en.wikipedia.org/wiki/Weeds_of_National_Significance"),
		NTPDFURL:    getEnv("NT_PDF_URL", "https://nt.gov.au/__data/assets/pdf_file/declared-weeds-in-the-nt-2025.pdf"),

		LucidKeyURLs: getEnvList("LUCID_KEY_URLS", []string{
			"https://keyserver.lucidcentral.org/weeds/player.jsp?keyId=1&featuresChosen=false&entitiesDiscarded=false&gallery=true&viewer=simpleviewer&thumbnails=true",
			"https://keyserver.lucidcentral.org/key-server/player.jsp?keyId=39&thumbnails=true&gallery=true",
		}),
		LucidWaitSec: getEnvInt("LUCID_WAIT_SEC", 5),

		WACSVFilename:  getEnv("WA_CSV_FILENAME", "wa-s22.csv"),
		BCCCSVFilename: getEnv("BCC_CSV_FILENAME", "bcc_weedlist.csv"),
		VICPDFFilename: getEnv("VIC_PDF_FILENAME", "VIC.pdf"),
		SAPDFFilename:  getEnv("SA_PDF_FILENAME", "SA.pdf"),
		NTPDFFilename:  getEnv("NT_PDF_FILENAME", "declared-weeds-in-the-nt-2025.pdf"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
