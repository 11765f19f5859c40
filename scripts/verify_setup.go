package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/shirou/gopsutil/v3/mem"
)

// 启动浏览器建议的最小可用内存
const minAvailableMB = 500

func main() {
	fmt.Println("==============================================")
	fmt.Println("  CnkiCrawl 环境验证")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	fmt.Printf("✅ Go版本: %s\n", runtime.Version())
	fmt.Printf("✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// 检查Chrome/Chromium
	if path, found := launcher.LookPath(); found {
		fmt.Printf("✅ 浏览器: %s\n", path)
	} else {
		fmt.Println("⚠️  未找到本地Chrome/Chromium - 首次运行时 rod 会自动下载")
		fmt.Println("   也可以在 configs/config.yaml 中设置 browser.bin")
	}

	// 检查内存
	if vm, err := mem.VirtualMemory(); err != nil {
		fmt.Printf("⚠️  无法读取内存信息: %v\n", err)
	} else {
		availMB := vm.Available / 1024 / 1024
		if availMB < minAvailableMB {
			fmt.Printf("❌ 可用内存不足: %dMB (建议至少 %dMB)\n", availMB, minAvailableMB)
			allOK = false
		} else {
			fmt.Printf("✅ 可用内存: %dMB / %dMB\n", availMB, vm.Total/1024/1024)
		}
	}

	// 检查项目依赖
	fmt.Println()
	fmt.Println("检查Go模块依赖...")
	if _, err := os.Stat("go.mod"); err == nil {
		fmt.Println("✅ go.mod文件存在")

		fmt.Println("正在下载依赖...")
		if err := exec.Command("go", "mod", "download").Run(); err != nil {
			fmt.Printf("❌ go mod download失败: %v\n", err)
			allOK = false
		} else {
			fmt.Println("✅ 依赖下载完成")
		}
	} else {
		fmt.Println("❌ go.mod文件不存在")
		allOK = false
	}

	// 检查项目结构
	fmt.Println()
	fmt.Println("检查项目结构...")
	requiredDirs := []string{
		"cmd/cnkicrawl",
		"internal/config",
		"internal/core",
		"internal/crawlers",
		"internal/utils",
		"internal/models",
		"configs",
	}
	for _, dir := range requiredDirs {
		if _, err := os.Stat(dir); err == nil {
			fmt.Printf("✅ %s/\n", dir)
		} else {
			fmt.Printf("❌ %s/ 不存在\n", dir)
			allOK = false
		}
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ 环境验证通过!")
		fmt.Println()
		fmt.Println("下一步:")
		fmt.Println("  1. 运行 'go build -o cnkicrawl ./cmd/cnkicrawl' 构建项目")
		fmt.Println("  2. 运行 './cnkicrawl types' 查看支持的检索字段")
		fmt.Println("  3. 运行 './cnkicrawl search -q 石墨烯' 开始检索")
		os.Exit(0)
	}
	fmt.Println("❌ 环境验证失败,请解决上述问题。")
	os.Exit(1)
}
