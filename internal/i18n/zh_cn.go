package i18n

// ZhCNMessages 简体中文消息目录
var ZhCNMessages = map[string]string{
	// 机器人回复
	"reply.not_configured": "抱歉，尚未配置 webhook 地址，请联系支持人员。",
	"reply.status_error":   "抱歉，请求出错 (状态码: %d)。请重新发送消息；如果问题持续，请新建对话。",
	"reply.not_json":       "抱歉，服务器返回了无法识别的响应，请重试。",
	"reply.network":        "发生网络错误。请重新发送消息；如果问题持续，请新建对话。",
	"reply.unrecognized":   "已收到响应，但无法理解其内容。",

	// 演示文稿生成
	"deck.error":             "生成演示文稿时出错: %s",
	"deck.error_empty":       "生成演示文稿时出错。",
	"deck.featured_required": "请填写重点服务。",
	"deck.building":          "正在生成演示文稿...",
	"deck.no_document":       "请先选择一条文档消息。",
	"deck.generated":         "演示文稿已生成: 共 %d 页",

	// 附件
	"attach.echo":      "📎 已附加文件: %s",
	"attach.too_large": "文件过大: %s 超过 %d MB",
	"attach.invalid":   "不支持的文件类型: %s",
	"attach.pending":   "已附加: %s (Esc 移除)",

	// 界面
	"app.title":            "Deck Chat",
	"sidebar.sessions":     "对话",
	"sidebar.new":          "新对话",
	"sidebar.messages":     "%d 条",
	"composer.placeholder": "输入消息...",
	"status.ready":         "就绪",
	"status.sending":       "发送中...",
	"status.generating":    "正在生成演示文稿...",
	"status.pending":       "%d 个请求进行中",

	"loading.0": "思考中... 请稍候。",
	"loading.1": "正在处理，请稍等。",
	"loading.2": "正在分析你的请求。",
	"loading.3": "让我想一想。",
	"loading.4": "正在组织回复。",
	"loading.5": "正在查询资料。",

	"starter.heading":  "可以从这些开始 (按 1-3):",
	"starter.0.title":  "在工作中引入 AI",
	"starter.0.prompt": "研究在团队工作流程中引入 AI 的最佳策略，重点关注沟通、培训以及如何回应潜在顾虑。",
	"starter.1.title":  "高效的 AI 提示词",
	"starter.1.prompt": "我需要培训团队更好地向 AI 提问。请研究面向业务用户的提示词工程关键原则。",
	"starter.2.title":  "分析 AI 的影响",
	"starter.2.prompt": "研究并总结生成式 AI 对数字营销行业的潜在影响，包括主要机遇和风险。",

	"transcript.you":      "你",
	"transcript.bot":      "助手",
	"transcript.document": "文档: %s",
	"transcript.has_deck": "已附演示文稿 (/view)",
	"transcript.no_deck":  "使用 /present 生成演示文稿",

	"form.title":            "定制演示文稿",
	"form.description":      "填写几个关键信息，其余内容将根据文档 \"%s\" 生成。",
	"form.featured":         "重点服务",
	"form.featured_hint":    "例如：Logo 设计服务",
	"form.announcement":     "公告 (可选)",
	"form.ann_title":        "标题",
	"form.ann_title_hint":   "例如：系统维护通知",
	"form.ann_content":      "内容",
	"form.ann_content_hint": "请注意，我们的系统将进行维护...",
	"form.ann_closing":      "结束语",
	"form.ann_closing_hint": "感谢您的配合。",
	"form.visuals":          "视觉偏好",
	"form.visuals_hint":     "例如：深色主题、醒目标题",
	"form.help":             "tab 下一项 • enter 生成 • esc 取消",

	"viewer.progress": "第 %d 页，共 %d 页",
	"viewer.empty":    "没有找到演示内容。请返回对话并生成演示文稿。",
	"viewer.playing":  "播放中",
	"viewer.paused":   "已暂停",
	"viewer.help":     "←/→ 翻页 • 空格 播放/暂停 • r 重新生成 • esc 关闭",

	"cmd.help":            "命令: /new, /delete, /switch <n>, /attach <路径>, /detach, /present [n], /view [n], /regen, /sessions, /help, /quit",
	"cmd.unknown":         "未知命令: %s",
	"cmd.switch_usage":    "用法: /switch <n>",
	"cmd.attach_usage":    "用法: /attach <路径>",
	"cmd.no_session":      "没有这个对话: %s",
	"cmd.deleted":         "已删除对话 \"%s\"",
	"cmd.created":         "已新建对话",
	"cmd.no_presentation": "该文档还没有演示文稿，请先使用 /present。",

	"error.provider": "模型服务错误: %s",
	"error.config":   "配置错误: %s",
	"error.storage":  "存储错误: %s",

	"cli.imported":  "已从 %[2]s 导入 %[1]d 个会话",
	"cli.no_models": "%s 没有返回模型",
}
