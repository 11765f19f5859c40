// Package crawlers 驱动浏览器完成知网检索并解析页面
//
// # 概述
//
// 所有页面操作都通过 Page/Element 接口完成,有两种实现:
//   - rod: 基于 go-rod 的真实浏览器标签页
//   - HTMLPage: 基于 goquery 的静态文档,用于静态详情抓取和离线解析
//
// # 核心组件
//
// ## SessionPool (会话池)
//
// 整个进程只维护一个浏览器会话。会话在第一次获取标签页时创建,
// 空闲超过 IdleTimeout(默认600秒)或失去响应后在下一次获取时重建。
// 每次获取都打开一个新标签页,使用随机 User-Agent 并注入反检测脚本。
//
//	pool := NewSessionPool(NewRodEngine(RodOptions{Headless: true}), SessionPoolConfig{})
//	defer pool.Shutdown()
//
//	lease, err := pool.AcquirePage(ctx)
//	if err != nil { /* 处理错误 */ }
//	defer lease.Release()
//
// ## Driver (页面驱动)
//
// 首页检索、专业检索(限定期刊)、打开详情页、候选标题检索。
// 找不到输入框、无法提交属于致命错误;排序失败只记录日志。
//
// ## Collector (分页收集)
//
// 逐页解析结果表格,下一页按钮缺失或禁用时提前结束。
//
// ## 提取
//
// ExtractResultRow / ExtractDetail 每个字段独立容错,缺失时填默认值。
//
// ## StaticDetailFetcher
//
// 使用 colly 直接获取详情页,支持 gzip/deflate/br 和非 UTF-8 编码。
//
// ## ResourceMonitor
//
// 启动浏览器前检查可用内存,并为状态查询提供内存快照。
package crawlers
