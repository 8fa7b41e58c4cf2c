package config

import "sync"

type ResumeConfig struct {
	ExtractionEnabled bool
	MaxBytes          int64
	DownloadDir       string
}

var (
	resumeConfig *ResumeConfig
	resumeOnce   sync.Once
)

func LoadResumeConfig() *ResumeConfig {
	resumeOnce.Do(func() {
		resumeConfig = &ResumeConfig{
			ExtractionEnabled: getEnvBool("RESUME_EXTRACTION_ENABLED", true),
			MaxBytes:          int64(getEnvInt("RESUME_MAX_BYTES", 5*1024*1024)),
			DownloadDir:       getEnv("DOWNLOAD_DIR", "./downloads"),
		}
	})
	return resumeConfig
}
