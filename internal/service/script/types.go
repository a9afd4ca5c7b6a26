package script

// TypesFilename is the name under which the declarations are injected.
const TypesFilename = "types.d.ts"

// TypeDeclaration describes the window state slot for consumer tooling.
const TypeDeclaration = `declare global {
  interface Window {
    __ASTRO_THEMES__?: {
      theme: string;
      resolvedTheme: string;
      systemTheme: "dark" | "light";
      forcedTheme?: string;
      themes: string[];
      setTheme: (theme: string | ((prevTheme: string) => string)) => void;
    };
  }
}
export {};`
