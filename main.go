package main

import (
	"context"
	"embed"
	"log"
	"runtime"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/fortuna-gaming/fortuna-desktop/bindings"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	app, err := bindings.New()
	if err != nil {
		log.Fatalf("init failed: %v", err)
	}

	if err := wails.Run(&options.App{
		Title:            "Fortuna",
		Width:            1280,
		Height:           800,
		MinWidth:         1024,
		MinHeight:        700,
		WindowStartState: options.Normal,
		BackgroundColour: &options.RGBA{R: 15, G: 23, B: 42, A: 255},

		AssetServer: &assetserver.Options{
			Assets: assets,
		},

		OnStartup: func(ctx context.Context) {
			setAppContext(ctx)
			app.Startup(ctx)
		},
		OnShutdown: func(ctx context.Context) {
			app.Shutdown(ctx)
			setAppContext(nil)
		},

		Menu: buildAppMenu(),

		Bind: []interface{}{
			app.Session,
			app.Games,
		},

		LogLevel:           logger.INFO,
		LogLevelProduction: logger.ERROR,

		ErrorFormatter: func(err error) any {
			if err == nil {
				return nil
			}
			return err.Error()
		},

		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId: "8f0b6c1e-4d2a-4e79-9c35-fortuna-desktop",
		},

		Windows: &windows.Options{
			Theme:           windows.SystemDefault,
			WindowClassName: "FortunaWindow",
		},
		Mac: &mac.Options{
			About: &mac.AboutInfo{
				Title:   "Fortuna",
				Message: "Desktop client for the Fortuna casino.\nBuilt with Wails",
			},
		},
		Linux: &linux.Options{
			ProgramName:      "fortuna",
			WebviewGpuPolicy: linux.WebviewGpuPolicyAlways,
		},
	}); err != nil {
		log.Fatalf("error running app: %v", err)
	}
}

var (
	appCtx   context.Context
	appCtxMu sync.RWMutex
)

func setAppContext(ctx context.Context) {
	appCtxMu.Lock()
	defer appCtxMu.Unlock()
	appCtx = ctx
}

func withAppContext(action func(context.Context)) {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()
	if ctx == nil {
		return
	}
	action(ctx)
}

func buildAppMenu() *menu.Menu {
	rootMenu := menu.NewMenu()

	if runtime.GOOS == "darwin" {
		if appMenu := menu.AppMenu(); appMenu != nil {
			rootMenu.Append(appMenu)
		}
	}

	fileMenu := menu.NewMenu()
	fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
		withAppContext(wruntime.Quit)
	})
	rootMenu.Append(menu.SubMenu("File", fileMenu))

	viewMenu := menu.NewMenu()
	viewMenu.AddText("Reload", keys.CmdOrCtrl("r"), func(_ *menu.CallbackData) {
		withAppContext(wruntime.WindowReloadApp)
	})
	viewMenu.AddText("Toggle Fullscreen", keys.Combo("f", keys.CmdOrCtrlKey, keys.ShiftKey), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			if wruntime.WindowIsFullscreen(ctx) {
				wruntime.WindowUnfullscreen(ctx)
			} else {
				wruntime.WindowFullscreen(ctx)
			}
		})
	})
	rootMenu.Append(menu.SubMenu("View", viewMenu))

	return rootMenu
}
