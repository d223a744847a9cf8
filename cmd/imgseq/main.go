package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ivlev/imgseq/internal/config"
	"github.com/ivlev/imgseq/internal/engine"
	"github.com/ivlev/imgseq/internal/fixture"
	"github.com/ivlev/imgseq/internal/pixels"
	"github.com/ivlev/imgseq/internal/source"
	"github.com/ivlev/imgseq/internal/system"
	"github.com/ivlev/imgseq/internal/video"
)

const usage = `Использование: imgseq <команда> [флаги]

Команды:
  play   воспроизвести последовательность (в видео, PNG или вхолостую)
  info   загрузить все кадры и вывести сводку
  gen    сгенерировать тестовую последовательность QR-кадров
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "gen":
		err = runGen(os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "[-] Неизвестная команда: %s\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
}

// sequenceFlags are shared by play and info.
type sequenceFlags struct {
	configPath *string
	folder     *string
	prefix     *string
	filetype   *string
	start      *int
	end        *int
	digits     *int
	ext        *string
	maxFrames  *int
	threaded   *bool
	fps        *float64
	kind       *string
	dpi        *int
}

func addSequenceFlags(fs *flag.FlagSet) *sequenceFlags {
	return &sequenceFlags{
		configPath: fs.String("config", "", "YAML-файл конфигурации (флаги имеют приоритет)"),
		folder:     fs.String("folder", "", "Папка с кадрами"),
		prefix:     fs.String("prefix", "", "Префикс имени кадра для диапазона, например shots/img"),
		filetype:   fs.String("type", "png", "Расширение кадров диапазона"),
		start:      fs.Int("start", 0, "Первый индекс диапазона"),
		end:        fs.Int("end", 0, "Последний индекс диапазона (включительно)"),
		digits:     fs.Int("digits", 0, "Ширина индекса с ведущими нулями (0 - без дополнения)"),
		ext:        fs.String("ext", "", "Фильтр расширения для папки (пусто - все файлы)"),
		maxFrames:  fs.Int("max", 0, "Максимум кадров из папки (0 - без ограничения)"),
		threaded:   fs.Bool("threaded", false, "Фоновая загрузка папки"),
		fps:        fs.Float64("fps", 30, "Частота кадров"),
		kind:       fs.String("kind", "uint8", "Формат пикселей: uint8, uint16, float32"),
		dpi:        fs.Int("dpi", 150, "DPI для кадров PDF"),
	}
}

// loadConfig starts from the config file, if any, and applies only the
// flags given on the command line.
func loadConfig(fs *flag.FlagSet, sf *sequenceFlags, apply func(name string, cfg *config.Config) error) (*config.Config, error) {
	cfg := config.Default()
	if *sf.configPath != "" {
		var err error
		if cfg, err = config.Load(*sf.configPath); err != nil {
			return nil, err
		}
		fmt.Printf("[*] Конфигурация: %s\n", *sf.configPath)
	}

	var applyErr error
	fs.Visit(func(f *flag.Flag) {
		if applyErr != nil {
			return
		}
		switch f.Name {
		case "folder":
			cfg.Folder = *sf.folder
			cfg.Range = nil
		case "prefix", "type", "start", "end", "digits":
			cfg.Folder = ""
			cfg.Range = &config.Range{
				Prefix:   *sf.prefix,
				Filetype: *sf.filetype,
				Start:    *sf.start,
				End:      *sf.end,
				Digits:   *sf.digits,
			}
		case "ext":
			cfg.Extension = *sf.ext
		case "max":
			cfg.MaxFrames = *sf.maxFrames
		case "threaded":
			cfg.Threaded = *sf.threaded
		case "fps":
			cfg.FPS = *sf.fps
		case "kind":
			kind, err := pixels.ParseKind(*sf.kind)
			if err != nil {
				applyErr = err
				return
			}
			cfg.PixelKind = kind
		case "dpi":
			cfg.DPI = *sf.dpi
		default:
			if apply != nil {
				applyErr = apply(f.Name, cfg)
			}
		}
	})
	if applyErr != nil {
		return nil, applyErr
	}
	return cfg, cfg.Validate()
}

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	sf := addSequenceFlags(fs)
	widthPtr := fs.Int("width", 0, "Ширина выходного кадра (0 - как у кадра)")
	heightPtr := fs.Int("height", 0, "Высота выходного кадра (0 - как у кадра)")
	minFilterPtr := fs.String("min-filter", "linear", "Фильтр уменьшения: nearest, linear, catmullrom")
	magFilterPtr := fs.String("mag-filter", "linear", "Фильтр увеличения: nearest, linear, catmullrom")
	loopsPtr := fs.Int("loops", 1, "Количество проходов (0 - бесконечно)")
	outputPtr := fs.String("output", "", "Видео (.mp4, .mov, .mkv) или папка для PNG; пусто - без вывода")
	qualityPtr := fs.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	saveConfigPtr := fs.String("save-config", "", "Сохранить итоговую конфигурацию в YAML")
	fs.Parse(args)

	cfg, err := loadConfig(fs, sf, func(name string, cfg *config.Config) error {
		switch name {
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "min-filter":
			cfg.MinFilter = *minFilterPtr
		case "mag-filter":
			cfg.MagFilter = *magFilterPtr
		case "loops":
			cfg.Loops = *loopsPtr
		case "output":
			cfg.Output = *outputPtr
		case "quality":
			cfg.Quality = *qualityPtr
		}
		return nil
	})
	if err != nil {
		return err
	}

	if *saveConfigPtr != "" {
		if err := config.Write(cfg, *saveConfigPtr); err != nil {
			return fmt.Errorf("не удалось сохранить конфигурацию: %w", err)
		}
		fmt.Printf("[*] Конфигурация сохранена: %s\n", *saveConfigPtr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sink, onlyChanges, err := openSink(ctx, cfg)
	if err != nil {
		return err
	}

	player, err := engine.NewPlayer(cfg, sink)
	if err != nil {
		return err
	}
	player.OnlyChanges = onlyChanges

	fmt.Println("--- [IMGSEQ: PLAY] ---")
	fmt.Printf("[*] Источник: %s | %g FPS | Пиксели: %s | Потоковая загрузка: %v\n",
		describeInput(cfg), cfg.FPS, cfg.PixelKind, cfg.Threaded)
	fmt.Println("-----------------------------")

	runErr := player.Run(ctx)
	if sink != nil {
		if err := sink.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return runErr
	}

	if cfg.Output != "" {
		fmt.Printf("[+++] Успех! Результат: %s\n", cfg.Output)
	}
	return nil
}

func openSink(ctx context.Context, cfg *config.Config) (video.FrameSink, bool, error) {
	if cfg.Output == "" {
		return nil, false, nil
	}

	switch strings.ToLower(filepath.Ext(cfg.Output)) {
	case ".mp4", ".mov", ".mkv":
		encoder := cfg.Encoder
		if encoder == "" {
			encoder = video.BestH264Encoder()
			if encoder != "libx264" {
				fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoder)
			}
		}
		return video.NewFFmpegSink(ctx, cfg.Output, cfg.FPS, encoder, cfg.Quality), false, nil
	}

	sink, err := video.NewPNGSink(cfg.Output)
	if err != nil {
		return nil, false, err
	}
	return sink, true, nil
}

func describeInput(cfg *config.Config) string {
	if r := cfg.Range; r != nil {
		return fmt.Sprintf("%s[%d..%d].%s", r.Prefix, r.Start, r.End, r.Filetype)
	}
	return cfg.Folder
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	sf := addSequenceFlags(fs)
	listPtr := fs.Bool("list", false, "Вывести путь каждого кадра")
	fs.Parse(args)

	cfg, err := loadConfig(fs, sf, nil)
	if err != nil {
		return err
	}
	// info needs every frame decoded before it can report.
	cfg.Threaded = false

	player, err := engine.NewPlayer(cfg, nil)
	if err != nil {
		return err
	}
	if err := player.Start(); err != nil {
		return err
	}
	seq := player.Seq
	if err := seq.PreloadAll(); err != nil {
		return err
	}

	total := seq.TotalFrames()
	failed := 0
	for i := 0; i < total; i++ {
		path, _ := seq.FilePath(i)
		if seq.FrameFailed(i) {
			failed++
			fmt.Printf("[!] %4d %s: не удалось декодировать\n", i, path)
		} else if *listPtr {
			fmt.Printf("    %4d %s\n", i, path)
		}
	}

	frameBytes := uint64(seq.Width()*seq.Height()) * uint64(cfg.PixelKind.BytesPerPixel())
	fmt.Println("--- [IMGSEQ: INFO] ---")
	fmt.Printf("[*] Источник: %s\n", describeInput(cfg))
	fmt.Printf("[*] Кадров: %d (ошибок: %d) | %dx%d | %.2fs @ %g FPS\n",
		total, failed, seq.Width(), seq.Height(), seq.LengthInSeconds(), seq.FrameRate())
	fmt.Printf("[*] Память под кадры: %s (%s)\n",
		system.HumanBytes(frameBytes*uint64(total-failed)), cfg.PixelKind)
	if avail, err := system.AvailableMemory(); err == nil {
		fmt.Printf("[*] Доступно памяти: %s\n", system.HumanBytes(avail))
	}
	return nil
}

func runGen(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	prefixPtr := fs.String("prefix", "frames/frame_", "Префикс имени кадра")
	typePtr := fs.String("type", "png", "Формат кадров: png, jpg")
	startPtr := fs.Int("start", 0, "Первый индекс")
	endPtr := fs.Int("end", 29, "Последний индекс (включительно)")
	digitsPtr := fs.Int("digits", 4, "Ширина индекса с ведущими нулями")
	sizePtr := fs.Int("size", 256, "Размер кадра в пикселях")
	checkPtr := fs.Bool("check", false, "Проверить сгенерированные кадры декодером")
	fs.Parse(args)

	paths, err := fixture.WriteRange(*prefixPtr, *typePtr, *startPtr, *endPtr, *digitsPtr, *sizePtr)
	if err != nil {
		return err
	}
	fmt.Printf("[*] Записано кадров: %d (%s ... %s)\n", len(paths), paths[0], paths[len(paths)-1])

	if *checkPtr {
		dec := source.ImageDecoder{}
		for i, p := range paths {
			w, h, err := dec.Dimensions(p)
			if err != nil {
				return fmt.Errorf("кадр %d: %w", i, err)
			}
			if w != *sizePtr || h != *sizePtr {
				return fmt.Errorf("кадр %d: размер %dx%d, ожидался %d", i, w, h, *sizePtr)
			}
		}
		fmt.Println("[*] Проверка пройдена")
	}
	return nil
}
