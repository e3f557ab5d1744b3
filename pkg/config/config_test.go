package config_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatrelay/pkg/config"
)

var envVars = []string{
	config.EnvUpstreamURL,
	config.EnvAPIKey,
	config.EnvListen,
	config.EnvRoute,
	config.EnvTimeout,
	config.EnvDebug,
}

var _ = Describe("Config", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "chatrelay-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		for _, key := range envVars {
			if prev, ok := os.LookupEnv(key); ok {
				DeferCleanup(os.Setenv, key, prev)
			} else {
				DeferCleanup(os.Unsetenv, key)
			}
			Expect(os.Unsetenv(key)).To(Succeed())
		}
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	writeFile := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	// replaceFile swaps the file atomically so a watcher never sees it
	// half written.
	replaceFile := func(path, content string) {
		tmp := path + ".tmp"
		Expect(os.WriteFile(tmp, []byte(content), 0o600)).To(Succeed())
		Expect(os.Rename(tmp, path)).To(Succeed())
	}

	Describe("Loader", func() {
		It("returns defaults when no sources exist", func() {
			cfg, err := config.Loader{
				Path:    filepath.Join(tmpDir, "missing.toml"),
				EnvFile: filepath.Join(tmpDir, "missing.env"),
			}.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.Default()))
		})

		It("does not treat a missing upstream as an error", func() {
			cfg, err := config.Loader{}.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Upstream.URL).To(BeEmpty())
			Expect(cfg.Upstream.APIKey).To(BeEmpty())
		})

		It("reads the TOML file", func() {
			path := writeFile("chatrelay.toml", `
listen = ":9090"
route = "/relay"
timeout = "30s"
debug = true

[upstream]
url = "https://api.example.test/v1"
api_key = "from-file"
`)
			cfg, err := config.Loader{Path: path}.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Listen).To(Equal(":9090"))
			Expect(cfg.Route).To(Equal("/relay"))
			Expect(cfg.Timeout.Duration).To(Equal(30 * time.Second))
			Expect(cfg.Debug).To(BeTrue())
			Expect(cfg.Upstream.URL).To(Equal("https://api.example.test/v1"))
			Expect(cfg.Upstream.APIKey).To(Equal("from-file"))
		})

		It("lets environment variables override the file", func() {
			path := writeFile("chatrelay.toml", "[upstream]\nurl = \"https://file.test\"\napi_key = \"from-file\"\n")
			Expect(os.Setenv(config.EnvAPIKey, "from-env")).To(Succeed())
			Expect(os.Setenv(config.EnvTimeout, "5s")).To(Succeed())

			cfg, err := config.Loader{Path: path}.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Upstream.URL).To(Equal("https://file.test"))
			Expect(cfg.Upstream.APIKey).To(Equal("from-env"))
			Expect(cfg.Timeout.Duration).To(Equal(5 * time.Second))
		})

		It("loads the env file without overriding the environment", func() {
			envFile := writeFile(".env", "AI_API_URL=https://dotenv.test\nAI_API_KEY=from-dotenv\n")
			Expect(os.Setenv(config.EnvAPIKey, "from-env")).To(Succeed())

			cfg, err := config.Loader{EnvFile: envFile}.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Upstream.URL).To(Equal("https://dotenv.test"))
			Expect(cfg.Upstream.APIKey).To(Equal("from-env"))
		})

		It("rejects a malformed TOML file", func() {
			path := writeFile("chatrelay.toml", "listen = \n")

			_, err := config.Loader{Path: path}.Load()
			Expect(err).To(HaveOccurred())
		})

		It("rejects an invalid timeout", func() {
			path := writeFile("chatrelay.toml", "timeout = \"soon\"\n")

			_, err := config.Loader{Path: path}.Load()
			Expect(err).To(HaveOccurred())
		})

		It("rejects an invalid debug flag", func() {
			Expect(os.Setenv(config.EnvDebug, "maybe")).To(Succeed())

			_, err := config.Loader{}.Load()
			Expect(err).To(MatchError(ContainSubstring(config.EnvDebug)))
		})
	})

	Describe("Store", func() {
		It("serves the upstream of the current config", func() {
			cfg := config.Default()
			cfg.Upstream = config.Upstream{URL: "https://a.test", APIKey: "a"}
			store := config.NewStore(cfg)

			Expect(store.Upstream().URL).To(Equal("https://a.test"))

			cfg.Upstream = config.Upstream{URL: "https://b.test", APIKey: "b"}
			store.Set(cfg)

			Expect(store.Upstream().URL).To(Equal("https://b.test"))
			Expect(store.Upstream().APIKey).To(Equal("b"))
		})
	})

	Describe("Watch", func() {
		It("requires a config path", func() {
			err := config.Watch(context.Background(), config.Loader{}, config.NewStore(config.Default()), zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("reloads the store when the file changes", func() {
			path := writeFile("chatrelay.toml", "[upstream]\nurl = \"https://before.test\"\napi_key = \"k\"\n")
			loader := config.Loader{Path: path}

			cfg, err := loader.Load()
			Expect(err).NotTo(HaveOccurred())
			store := config.NewStore(cfg)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- config.Watch(ctx, loader, store, zap.NewNop())
			}()
			DeferCleanup(func() {
				cancel()
				Eventually(done).Should(Receive(BeNil()))
			})

			// Give the watcher time to register before writing
			time.Sleep(100 * time.Millisecond)
			replaceFile(path, "[upstream]\nurl = \"https://after.test\"\napi_key = \"k\"\n")

			Eventually(func() string {
				return store.Upstream().URL
			}, 2*time.Second, 20*time.Millisecond).Should(Equal("https://after.test"))
		})

		It("keeps the previous config when a reload fails", func() {
			path := writeFile("chatrelay.toml", "[upstream]\nurl = \"https://before.test\"\n")
			loader := config.Loader{Path: path}

			cfg, err := loader.Load()
			Expect(err).NotTo(HaveOccurred())
			store := config.NewStore(cfg)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- config.Watch(ctx, loader, store, zap.NewNop())
			}()
			DeferCleanup(func() {
				cancel()
				Eventually(done).Should(Receive(BeNil()))
			})

			time.Sleep(100 * time.Millisecond)
			replaceFile(path, "[upstream\n")

			Consistently(func() string {
				return store.Upstream().URL
			}, 300*time.Millisecond, 20*time.Millisecond).Should(Equal("https://before.test"))
		})
	})
})
